package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"

	"smartexpense/internal/core"
	ports "smartexpense/internal/sheets"
)

// fakeSheets emulates the three Sheets endpoints the client uses.
type fakeSheets struct {
	mu        sync.Mutex
	sheets    []string
	appended  [][]any
	headers   int
	failFirst int
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/spreadsheets/sheet-id"):
		var out struct {
			Sheets []map[string]map[string]string `json:"sheets"`
		}
		for _, s := range f.sheets {
			out.Sheets = append(out.Sheets, map[string]map[string]string{"properties": {"title": s}})
		}
		json.NewEncoder(w).Encode(out)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		f.sheets = append(f.sheets, req.Requests[0].AddSheet.Properties.Title)
		io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)
	case r.Method == http.MethodPut:
		f.headers++
		io.WriteString(w, `{"spreadsheetId":"sheet-id"}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
		if f.failFirst > 0 {
			f.failFirst--
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, `{"error":{"code":503,"message":"backend error"}}`)
			return
		}
		var vr struct {
			Values [][]any `json:"values"`
		}
		json.NewDecoder(r.Body).Decode(&vr)
		f.appended = append(f.appended, vr.Values...)
		io.WriteString(w, `{"spreadsheetId":"sheet-id","updates":{"updatedRange":"'2024 Journal'!A2:H2"}}`)
	default:
		http.Error(w, "unexpected "+r.Method+" "+path, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := New(context.Background(), "sheet-id", "Journal",
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.backoff = time.Millisecond
	return c
}

func entry() ports.JournalEntry {
	return ports.JournalEntry{
		RecordedAt: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		Event:      core.EventExpenseCreated,
		ExpenseID:  "e1",
		Owner:      "u1",
		Amount:     "12.50",
		Category:   "Food & Drink",
	}
}

func TestAppendEntryCreatesYearSheet(t *testing.T) {
	fake := &fakeSheets{sheets: []string{"2023 Journal"}}
	c := newTestClient(t, fake)

	ref, err := c.AppendEntry(context.Background(), entry())
	if err != nil {
		t.Fatalf("AppendEntry: %v", err)
	}
	if ref != "'2024 Journal'!A2:H2" {
		t.Errorf("unexpected ref %q", ref)
	}
	if len(fake.sheets) != 2 || fake.sheets[1] != "2024 Journal" || fake.headers != 1 {
		t.Fatalf("expected 2024 sheet with header, got sheets=%v headers=%d", fake.sheets, fake.headers)
	}

	if _, err := c.AppendEntry(context.Background(), entry()); err != nil {
		t.Fatalf("second AppendEntry: %v", err)
	}
	if len(fake.sheets) != 2 || fake.headers != 1 || len(fake.appended) != 2 {
		t.Fatalf("sheet must be prepared once: sheets=%v headers=%d rows=%d", fake.sheets, fake.headers, len(fake.appended))
	}
	if fake.appended[0][1] != "expense.created" || fake.appended[0][6] != "12.50" {
		t.Fatalf("unexpected row %v", fake.appended[0])
	}
}

func TestAppendEntryRetriesServerErrors(t *testing.T) {
	fake := &fakeSheets{sheets: []string{"2024 Journal"}, failFirst: 2}
	c := newTestClient(t, fake)
	if _, err := c.AppendEntry(context.Background(), entry()); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(fake.appended) != 1 {
		t.Fatalf("expected one appended row, got %d", len(fake.appended))
	}
}

func TestAppendEntryGivesUp(t *testing.T) {
	fake := &fakeSheets{sheets: []string{"2024 Journal"}, failFirst: maxAttempts}
	c := newTestClient(t, fake)
	if _, err := c.AppendEntry(context.Background(), entry()); err == nil {
		t.Fatalf("expected error after %d failures", maxAttempts)
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ", "Journal")
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), "sheet-id", "Journal")
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{&googleapi.Error{Code: 429}, true},
		{&googleapi.Error{Code: 503}, true},
		{&googleapi.Error{Code: 400}, false},
		{errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := isRetryable(tc.err); got != tc.want {
			t.Errorf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestYearPrefixedName(t *testing.T) {
	cases := map[string]string{
		"Journal":      "2024 Journal",
		"2023 Journal": "2023 Journal",
		" Journal ":    "2024 Journal",
		"":             "",
	}
	for in, want := range cases {
		if got := yearPrefixedName(in, 2024); got != want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", in, got, want)
		}
	}
}
