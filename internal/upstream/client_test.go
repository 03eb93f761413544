package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", 5*time.Second, zap.NewNop()), srv
}

func TestFetchByRegion(t *testing.T) {
	var gotQuery map[string]string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"addr":       r.URL.Query().Get("addr"),
			"apiKey":     r.URL.Query().Get("apiKey"),
			"returnType": r.URL.Query().Get("returnType"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"csId":"S1","csNm":"Station One","addr":"Seoul","lat":"37.551","longi":"126.988",
			 "cpId":"C1","cpNm":"Charger 1","cpStat":"2","chargeTp":"2","cpTp":"7",
			 "statUpdatetime":"20250314092653"},
			{"csId":"S1","csNm":"Station One","addr":"Seoul","lat":37.551,"longi":126.988,
			 "cpId":"C2","cpStat":"1","chargeTp":"1","cpTp":"2",
			 "statUpdateTime":"2025-03-14T09:26:53Z"}
		]}`))
	})

	items, err := client.FetchByRegion(context.Background(), "서울특별시 강남구")
	if err != nil {
		t.Fatalf("FetchByRegion: %v", err)
	}
	if gotQuery["addr"] != "서울특별시 강남구" || gotQuery["apiKey"] != "test-key" || gotQuery["returnType"] != "json" {
		t.Errorf("unexpected query params: %v", gotQuery)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}

	first := items[0]
	if first.StationID != "S1" || first.ChargerID != "C1" || first.StatusCode != "2" {
		t.Errorf("unexpected first item: %+v", first)
	}
	if !first.HasCoords || first.Lat != 37.551 || first.Lon != 126.988 {
		t.Errorf("string coordinates not parsed: %+v", first)
	}
	if first.StatusTimeRaw != "20250314092653" || first.StatusTime == nil {
		t.Fatalf("compact timestamp not parsed: raw=%q parsed=%v", first.StatusTimeRaw, first.StatusTime)
	}
	want := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	if !first.StatusTime.Equal(want) {
		t.Errorf("StatusTime = %v, want %v", first.StatusTime, want)
	}

	// Numeric coordinates and the alternate timestamp key parse too.
	second := items[1]
	if !second.HasCoords || second.StatusTime == nil || !second.StatusTime.Equal(want) {
		t.Errorf("unexpected second item: %+v", second)
	}
	if len(second.Raw) == 0 {
		t.Error("raw payload not retained")
	}
}

func TestFetchByRegionEmptyData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	items, err := client.FetchByRegion(context.Background(), "region")
	if err != nil {
		t.Fatalf("empty data should not be an error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("len(items) = %d, want 0", len(items))
	}
}

func TestFetchByRegionServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := client.FetchByRegion(context.Background(), "region")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestFetchByRegionMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "<html>oops</html>"},
		{"wrong shape", `{"items":[]}`},
		{"null data", `{"data":null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			})
			_, err := client.FetchByRegion(context.Background(), "region")
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestItemUnmarshalUnparseableTimestamp(t *testing.T) {
	var item Item
	err := json.Unmarshal([]byte(`{"csId":"S1","lat":"37.5","longi":"127.0","cpId":"C1","statUpdatetime":"whenever"}`), &item)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if item.StatusTimeRaw != "whenever" {
		t.Errorf("raw timestamp not kept: %q", item.StatusTimeRaw)
	}
	if item.StatusTime != nil {
		t.Errorf("unparseable timestamp should stay nil, got %v", item.StatusTime)
	}
}

func TestItemUnmarshalMissingCoords(t *testing.T) {
	var item Item
	if err := json.Unmarshal([]byte(`{"csId":"S1","cpId":"C1","lat":"n/a"}`), &item); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if item.HasCoords {
		t.Error("HasCoords should be false for unparseable coordinates")
	}
}
