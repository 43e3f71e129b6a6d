package application

import "time"

// Clock abstracts time.Now so record timestamps can be pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
