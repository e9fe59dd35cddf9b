package util

import (
	"crypto/sha256"
	"strconv"
)

func HashVector(vec []float64) [32]byte {
	buffer := GetBytesBuffer()
	defer PutBytesBuffer(buffer)
	for i := range vec {
		buffer.WriteString(strconv.FormatFloat(vec[i], 'g', 16, 64))
	}
	return sha256.Sum256(buffer.Bytes())
}

func HashStrings(values []string) [32]byte {
	buffer := GetBytesBuffer()
	defer PutBytesBuffer(buffer)
	for i := range values {
		buffer.WriteString(values[i])
		buffer.WriteByte(0x0)
	}
	return sha256.Sum256(buffer.Bytes())
}
