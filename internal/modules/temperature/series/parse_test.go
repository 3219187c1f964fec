package series

import (
	"errors"
	"testing"
	"time"

	"github.com/kubakubakuba/templogger/internal/modules/temperature/types"
)

func TestParse_SkipsMalformedLines(t *testing.T) {
	content := "2024-01-01 06:30:00, 21.5\n" +
		"2024-01-01 06:31:00, 21.6, extra\n" +
		"2024-01-01 06:32:00\n" +
		"2024-01-01 06:33:00,21.7\n" +
		"not a date, 21.8\n" +
		"2024-13-01 06:34:00, 21.9\n" +
		"2024-01-01 06:35:00, warm\n" +
		"2024-01-01 06:36:00, NaN\n" +
		"\n" +
		"   2024-01-01 07:00:00, 22   \r\n" +
		"2024-01-01 06:45:00, -3.25"

	got, err := Parse(content, ParseOptions{Location: time.UTC})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []types.Sample{
		{Time: time.Date(2024, 1, 1, 6, 30, 0, 0, time.UTC), Temperature: 21.5},
		{Time: time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC), Temperature: 22},
		{Time: time.Date(2024, 1, 1, 6, 45, 0, 0, time.UTC), Temperature: -3.25},
	}
	if len(got.Samples) != len(want) {
		t.Fatalf("got %d samples %+v; want %d", len(got.Samples), got.Samples, len(want))
	}
	for i := range want {
		if !got.Samples[i].Time.Equal(want[i].Time) || got.Samples[i].Temperature != want[i].Temperature {
			t.Errorf("sample[%d] = %+v; want %+v", i, got.Samples[i], want[i])
		}
	}
	if !got.Last.Equal(time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("Last = %v; want 07:00", got.Last)
	}
}

func TestParse_EmptyData(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"only blank lines", "\n\n\n"},
		{"only garbage", "hello\nworld, x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.content, ParseOptions{})
			if !errors.Is(err, types.ErrEmptyData) {
				t.Errorf("Parse() err = %v; want ErrEmptyData", err)
			}
		})
	}
}

func TestParse_MinTemperature(t *testing.T) {
	content := "2024-01-01 00:00:00, -70\n" +
		"2024-01-01 00:01:00, -69.01\n" +
		"2024-01-01 00:02:00, -69\n" +
		"2024-01-01 00:03:00, 12\n"

	t.Run("batch variant drops values below the floor", func(t *testing.T) {
		got, err := Parse(content, ParseOptions{MinTemperature: MinTemperature(BatchMinTemperature)})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(got.Samples) != 2 {
			t.Fatalf("got %d samples; want 2", len(got.Samples))
		}
		if got.Samples[0].Temperature != -69 || got.Samples[1].Temperature != 12 {
			t.Errorf("samples = %+v; want -69 and 12", got.Samples)
		}
	})

	t.Run("live variant keeps everything", func(t *testing.T) {
		got, err := Parse(content, ParseOptions{})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(got.Samples) != 4 {
			t.Errorf("got %d samples; want 4", len(got.Samples))
		}
	})

	t.Run("all implausible is empty", func(t *testing.T) {
		_, err := Parse("2024-01-01 00:00:00, -200\n", ParseOptions{MinTemperature: MinTemperature(BatchMinTemperature)})
		if !errors.Is(err, types.ErrEmptyData) {
			t.Errorf("err = %v; want ErrEmptyData", err)
		}
	})
}
