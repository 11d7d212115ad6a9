//go:build gofuzz
// +build gofuzz

package quest

func Fuzz(data []byte) int {
	q, err := NewBytes(data, &Options{MaxCallDepth: 128})
	if err != nil {
		return 0
	}
	if _, err := q.Run(); err != nil {
		return 0
	}
	return 1
}
