package data

import (
	"errors"
	"strings"
	"testing"
)

const calendarCSV = `date,wm_yr_wk,weekday,wday,month,year,d,event_name_1,event_type_1,event_name_2,event_type_2,snap_CA,snap_TX,snap_WI
2011-01-29,11101,Saturday,1,1,2011,d_1,,,,,0,0,0
2011-01-30,11101,Sunday,2,1,2011,d_2,,,,,0,0,0
2011-02-06,11102,Sunday,2,2,2011,d_9,SuperBowl,Sporting,,,1,1,0
`

func TestParseCalendar(t *testing.T) {
	cal, err := ParseCalendar(strings.NewReader(calendarCSV), "calendar.csv")
	if err != nil {
		t.Fatalf("ParseCalendar: %v", err)
	}
	if len(cal.Days) != 3 {
		t.Fatalf("got %d days, want 3", len(cal.Days))
	}
	d, ok := cal.ByIndex(9)
	if !ok {
		t.Fatal("d_9 missing")
	}
	if d.WmYrWk != 11102 || !d.SnapCA || !d.SnapTX || d.SnapWI {
		t.Errorf("d_9 = %+v", d)
	}
	if len(d.Events) != 1 || d.Events[0].Name != "SuperBowl" || d.Events[0].Type != "Sporting" {
		t.Errorf("events = %+v", d.Events)
	}
	if d.DayOfWeek != 6 || !d.IsWeekend || d.Quarter != 1 {
		t.Errorf("derived fields = dow %d weekend %v quarter %d", d.DayOfWeek, d.IsWeekend, d.Quarter)
	}
}

func TestParseCalendarBadDate(t *testing.T) {
	in := strings.Replace(calendarCSV, "2011-01-30", "30/01/2011", 1)
	_, err := ParseCalendar(strings.NewReader(in), "calendar.csv")
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *SchemaError", err)
	}
	if se.Line != 3 || se.Column != "date" {
		t.Errorf("SchemaError = %+v, want line 3 column date", se)
	}
}

func TestParseSales(t *testing.T) {
	in := "id,item_id,dept_id,cat_id,store_id,state_id,d_1,d_2,d_3\n" +
		"FOODS_1_001_CA_1_validation,FOODS_1_001,FOODS_1,FOODS,CA_1,CA,0,2,1\n" +
		"HOBBIES_1_001_TX_1_validation,HOBBIES_1_001,HOBBIES_1,HOBBIES,TX_1,TX,1,0,0\n"
	sales, err := ParseSales(strings.NewReader(in), "sales.csv")
	if err != nil {
		t.Fatalf("ParseSales: %v", err)
	}
	if len(sales) != 2 {
		t.Fatalf("got %d series, want 2", len(sales))
	}
	s := sales[0]
	if s.Key() != "FOODS_1_001_CA_1" || s.LastDay() != 3 || s.Sales[1] != 2 {
		t.Errorf("series = %+v", s)
	}
}

func TestParseSalesRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"gap in days", "id,item_id,dept_id,cat_id,store_id,state_id,d_1,d_3\nx,i,d,c,s,st,1,2\n"},
		{"missing column", "id,item_id,dept_id,cat_id,store_id,d_1\nx,i,d,c,s,1\n"},
		{"no days", "id,item_id,dept_id,cat_id,store_id,state_id\nx,i,d,c,s,st\n"},
		{"bad number", "id,item_id,dept_id,cat_id,store_id,state_id,d_1\nx,i,d,c,s,st,abc\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSales(strings.NewReader(tt.in), "sales.csv")
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("err = %v, want *SchemaError", err)
			}
		})
	}
}

func TestParsePrices(t *testing.T) {
	in := "store_id,item_id,wm_yr_wk,sell_price\nCA_1,FOODS_1_001,11101,2.24\nCA_1,FOODS_1_001,11102,x\n"
	_, err := ParsePrices(strings.NewReader(in), "sell_prices.csv")
	var se *SchemaError
	if !errors.As(err, &se) || se.Line != 3 || se.Column != "sell_price" {
		t.Fatalf("err = %v, want sell_price error on line 3", err)
	}

	recs, err := ParsePrices(strings.NewReader(in[:strings.LastIndex(in, "CA_1")]), "sell_prices.csv")
	if err != nil {
		t.Fatalf("ParsePrices: %v", err)
	}
	if len(recs) != 1 || recs[0].SellPrice != 2.24 || recs[0].WmYrWk != 11101 {
		t.Errorf("records = %+v", recs)
	}
}

func TestParseSubmissionHeader(t *testing.T) {
	if _, err := ParseSubmission(strings.NewReader("id,F1,F2\n"), "sample_submission.csv"); err == nil {
		t.Fatal("accepted a 2-column submission")
	}
}

func TestSchemaErrorMessage(t *testing.T) {
	e := &SchemaError{File: "calendar.csv", Line: 4, Column: "wday", Msg: "invalid integer \"x\""}
	if got, want := e.Error(), `calendar.csv:4: column wday: invalid integer "x"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
