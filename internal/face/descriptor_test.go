package face

import (
	"math"
	"testing"
)

func validRaw() []float64 {
	raw := make([]float64, DescriptorLen)
	for i := range raw {
		raw[i] = float64(i) / DescriptorLen
	}
	return raw
}

func TestParse(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d, err := Parse(validRaw())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(d) != DescriptorLen {
			t.Fatalf("got length %d", len(d))
		}
	})

	t.Run("wrong length", func(t *testing.T) {
		if _, err := Parse([]float64{1, 2, 3}); err == nil {
			t.Fatal("expected error for short vector")
		}
	})

	t.Run("non-finite component", func(t *testing.T) {
		raw := validRaw()
		raw[7] = math.NaN()
		if _, err := Parse(raw); err == nil {
			t.Fatal("expected error for NaN component")
		}
		raw[7] = math.Inf(1)
		if _, err := Parse(raw); err == nil {
			t.Fatal("expected error for Inf component")
		}
	})

	t.Run("copies input", func(t *testing.T) {
		raw := validRaw()
		d, err := Parse(raw)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		raw[0] = 99
		if d[0] == 99 {
			t.Fatal("Parse must copy, not alias, the input")
		}
	})
}

func TestDescriptorSQLRoundTrip(t *testing.T) {
	d, err := Parse(validRaw())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	val, err := d.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var decoded Descriptor
	if err := decoded.Scan(val); err != nil {
		t.Fatalf("scan: %v", err)
	}
	for i := range d {
		if d[i] != decoded[i] {
			t.Fatalf("component %d changed: %v != %v", i, d[i], decoded[i])
		}
	}
}

func TestDescriptorScan(t *testing.T) {
	t.Run("null column", func(t *testing.T) {
		var d Descriptor
		if err := d.Scan(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d != nil {
			t.Fatal("null column must scan to nil descriptor")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		var d Descriptor
		if err := d.Scan([]byte("{not json")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("wrong length payload", func(t *testing.T) {
		var d Descriptor
		if err := d.Scan([]byte("[1,2,3]")); err == nil {
			t.Fatal("expected error for truncated stored vector")
		}
	})
}

func TestNilDescriptorValue(t *testing.T) {
	var d Descriptor
	val, err := d.Value()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if val != nil {
		t.Fatal("nil descriptor must store as NULL")
	}
}
