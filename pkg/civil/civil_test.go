package civil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"08:00", Clock{Hour: 8}, false},
		{"16:30:15", Clock{Hour: 16, Minute: 30, Second: 15}, false},
		{" 23:59 ", Clock{Hour: 23, Minute: 59}, false},
		{"24:00", Clock{}, true},
		{"8am", Clock{}, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestClock_String(t *testing.T) {
	if got := (Clock{Hour: 8}).String(); got != "08:00" {
		t.Errorf("expected 08:00, got %s", got)
	}
	if got := (Clock{Hour: 8, Second: 5}).String(); got != "08:00:05" {
		t.Errorf("expected 08:00:05, got %s", got)
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2024-06-10"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d != (Date{Year: 2024, Month: time.June, Day: 10}) {
		t.Fatalf("unexpected date %+v", d)
	}
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-06-10"` {
		t.Errorf("expected \"2024-06-10\", got %s", b)
	}
}

func TestDate_UnmarshalRejectsGarbage(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"10/06/2024"`), &d); err == nil {
		t.Error("expected error for non ISO date")
	}
	if err := json.Unmarshal([]byte(`20240610`), &d); err == nil {
		t.Error("expected error for numeric date")
	}
}

func TestParseDateTime_Layouts(t *testing.T) {
	want := DateTime{Date: Date{2024, time.June, 10}, Time: Clock{Hour: 9}}
	for _, in := range []string{"2024-06-10T09:00", "2024-06-10T09:00:00", "2024-06-10 09:00", "2024-06-10T09:00:00+02:00"} {
		got, err := ParseDateTime(in)
		if err != nil {
			t.Errorf("ParseDateTime(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseDateTime(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseDateTime("tomorrow"); err == nil {
		t.Error("expected error for free text")
	}
}

func TestDateTime_JSON(t *testing.T) {
	var dt DateTime
	if err := json.Unmarshal([]byte(`"2024-06-10T09:00"`), &dt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, _ := json.Marshal(dt)
	if string(b) != `"2024-06-10T09:00:00"` {
		t.Errorf("unexpected marshal output %s", b)
	}
}

func TestPgCodecs(t *testing.T) {
	d := Date{2024, time.June, 10}
	pd, err := d.DateValue()
	if err != nil || !pd.Valid {
		t.Fatalf("DateValue: %v %+v", err, pd)
	}
	var back Date
	if err := back.ScanDate(pd); err != nil || back != d {
		t.Errorf("ScanDate round trip: %v %+v", err, back)
	}

	c := Clock{Hour: 16, Minute: 30}
	pt, _ := c.TimeValue()
	if pt.Microseconds != int64(16*3600+30*60)*1_000_000 {
		t.Errorf("unexpected microseconds %d", pt.Microseconds)
	}
	var cb Clock
	if err := cb.ScanTime(pt); err != nil || cb != c {
		t.Errorf("ScanTime round trip: %v %+v", err, cb)
	}

	var null Clock
	if err := null.ScanTime(pgtype.Time{}); err != nil || null != (Clock{}) {
		t.Errorf("expected zero clock for NULL")
	}

	dt := DateTime{Date: d, Time: c}
	ts, _ := dt.TimestampValue()
	var dtb DateTime
	if err := dtb.ScanTimestamp(ts); err != nil || dtb != dt {
		t.Errorf("ScanTimestamp round trip: %v %+v", err, dtb)
	}
}

func TestClock_ScanText(t *testing.T) {
	var c Clock
	if err := c.Scan("08:15:00.000000"); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if c != (Clock{Hour: 8, Minute: 15}) {
		t.Errorf("unexpected clock %+v", c)
	}
}
