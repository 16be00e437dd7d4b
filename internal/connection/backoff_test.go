package connection

import (
	"testing"
	"time"
)

func TestConstantBackoff(t *testing.T) {
	b := ConstantBackoff{Delay: 250 * time.Millisecond}
	for i := 0; i < 3; i++ {
		if d := b.Next(); d != 250*time.Millisecond {
			t.Errorf("Next() = %v, want 250ms", d)
		}
	}
	b.Reset()
}

func TestExponentialBackoff(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	b := NewExponentialBackoff(min, max)

	for i := 0; i < 10; i++ {
		d := b.Next()
		if d < min || d > max {
			t.Fatalf("Next() = %v, outside [%v, %v]", d, min, max)
		}
	}

	b.Reset()
	if d := b.Next(); d != min {
		t.Errorf("Next() after Reset = %v, want %v", d, min)
	}
}
