package opts

import (
	"testing"
	"time"
)

func TestBoolConverter(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"t", true, false},
		{"yes", true, false},
		{"y", true, false},
		{"1", true, false},
		{"on", true, false},
		{"TRUE", true, false},
		{"false", false, false},
		{"f", false, false},
		{"no", false, false},
		{"n", false, false},
		{"0", false, false},
		{"off", false, false},
		{"", false, false},
		{"maybe", false, true},
		{"2", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := BoolConverter.Convert(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Convert(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Convert(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Convert(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDurationConverter(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"1h30m15s", time.Hour + 30*time.Minute + 15*time.Second, false},
		{"90:15", 90*time.Minute + 15*time.Second, false},
		{"01:30:15", time.Hour + 30*time.Minute + 15*time.Second, false},
		{"2d", 48 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"1M", 30 * 24 * time.Hour, false},
		{"1Y", 365 * 24 * time.Hour, false},
		{"0s", 0, false},
		{"", 0, true},
		{"1:2:3:4", 0, true},
		{"abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := DurationConverter.Convert(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Convert(%q) succeeded, want error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Convert(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Convert(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNumericConverters(t *testing.T) {
	if v, err := IntConverter.Convert(" 42 "); err != nil || v != 42 {
		t.Errorf("IntConverter(\" 42 \") = %v, %v", v, err)
	}
	if _, err := IntConverter.Convert("4.2"); err == nil {
		t.Error("IntConverter accepted a float")
	}
	if v, err := Int64Converter.Convert("9000000000"); err != nil || v != int64(9000000000) {
		t.Errorf("Int64Converter(9000000000) = %v, %v", v, err)
	}
	if v, err := FloatConverter.Convert("3.14"); err != nil || v != 3.14 {
		t.Errorf("FloatConverter(3.14) = %v, %v", v, err)
	}
	if _, err := FloatConverter.Convert("pi"); err == nil {
		t.Error("FloatConverter accepted a word")
	}
}

func TestVoidConverter(t *testing.T) {
	v, err := VoidConverter.Convert("anything")
	if err != nil {
		t.Fatalf("VoidConverter failed: %v", err)
	}
	if _, ok := v.(Void); !ok {
		t.Errorf("VoidConverter returned %T, want Void", v)
	}
}
