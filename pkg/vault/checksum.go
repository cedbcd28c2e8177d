package vault

import "hash/crc32"

// Checksum is the CRC-32 used throughout the container: reflected, polynomial
// 0xEDB88320, seed and final XOR 0xFFFFFFFF. crc32.IEEE is exactly that
// table. It authenticates nothing; it only detects corruption.
func Checksum(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}
