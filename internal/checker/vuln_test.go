package checker

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestAnalyzeFuzzResponse(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantIDs []string
	}{
		{
			name:    "clean body",
			body:    "<html><body>Welcome</body></html>",
			wantIDs: []string{"vuln-fuzz"},
		},
		{
			name:    "reflected payload",
			body:    "<html>You searched for " + fuzzPayload + "</html>",
			wantIDs: []string{"vuln-reflected"},
		},
		{
			name:    "sql error signature",
			body:    "Error: You have an error in your SQL syntax near line 1",
			wantIDs: []string{"vuln-sql-error"},
		},
		{
			name:    "both signals",
			body:    fuzzPayload + " caused PostgreSQL query failed",
			wantIDs: []string{"vuln-reflected", "vuln-sql-error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := AnalyzeFuzzResponse(tt.body)
			if len(findings) != len(tt.wantIDs) {
				t.Fatalf("got %d findings, want %d", len(findings), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if findings[i].ID != id {
					t.Errorf("finding %d = %s, want %s", i, findings[i].ID, id)
				}
			}
		})
	}
}

func TestAnalyzeFuzzResponseSeverities(t *testing.T) {
	reflected := AnalyzeFuzzResponse(fuzzPayload)[0]
	if reflected.Status != StatusFailed || reflected.Severity != SeverityMedium {
		t.Errorf("vuln-reflected = %s/%s, want failed/medium", reflected.Status, reflected.Severity)
	}

	sql := AnalyzeFuzzResponse("mysql_fetch_array() error")[0]
	if sql.Status != StatusFailed || sql.Severity != SeverityHigh {
		t.Errorf("vuln-sql-error = %s/%s, want failed/high", sql.Status, sql.Severity)
	}

	clean := AnalyzeFuzzResponse("nothing here")[0]
	if clean.Status != StatusPassed {
		t.Errorf("clean body = %s, want passed", clean.Status)
	}
}

// Only the first matching SQL pattern is reported.
func TestAnalyzeFuzzResponseOneSQLFindingPerBody(t *testing.T) {
	body := "SQL syntax error and also pg_query failed and ORA-00933"
	findings := AnalyzeFuzzResponse(body)
	count := 0
	for _, f := range findings {
		if f.ID == "vuln-sql-error" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("got %d vuln-sql-error findings, want 1", count)
	}
}

func TestAppendFuzzParam(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "bare url", input: "https://example.com"},
		{name: "existing query preserved", input: "https://example.com/search?page=2"},
		{name: "path preserved", input: "https://example.com/a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := appendFuzzParam(tt.input)
			if err != nil {
				t.Fatalf("appendFuzzParam(%q) failed: %v", tt.input, err)
			}
			parsed, err := url.Parse(got)
			if err != nil {
				t.Fatalf("result %q does not parse: %v", got, err)
			}
			if parsed.Query().Get("q") != fuzzPayload {
				t.Errorf("q = %q, want the fuzz payload", parsed.Query().Get("q"))
			}
			original, _ := url.Parse(tt.input)
			for key, want := range original.Query() {
				if key == "q" {
					continue
				}
				if got := parsed.Query()[key]; len(got) == 0 || got[0] != want[0] {
					t.Errorf("original query parameter %q lost", key)
				}
			}
		})
	}
}

func TestVulnCheckerReflectingServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "<html>results for %s</html>", r.URL.Query().Get("q"))
	}))
	defer server.Close()

	target, err := ParseTarget(server.URL)
	if err != nil {
		t.Fatalf("ParseTarget failed: %v", err)
	}

	chk := &VulnChecker{Timeout: 2 * time.Second, Client: server.Client()}
	findings := chk.Check(context.Background(), target)

	reflected := findByID(t, findings, "vuln-reflected")
	if reflected.Status != StatusFailed {
		t.Errorf("vuln-reflected = %s, want failed", reflected.Status)
	}
}

func TestVulnCheckerEncodingServerPasses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Entity-encode the query parameter, as a safe application would.
		q := r.URL.Query().Get("q")
		q = strings.NewReplacer("<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#39;").Replace(q)
		fmt.Fprintf(w, "<html>results for %s</html>", q)
	}))
	defer server.Close()

	target, err := ParseTarget(server.URL)
	if err != nil {
		t.Fatalf("ParseTarget failed: %v", err)
	}

	chk := &VulnChecker{Timeout: 2 * time.Second, Client: server.Client()}
	findings := chk.Check(context.Background(), target)

	if len(findings) != 1 || findings[0].ID != "vuln-fuzz" || findings[0].Status != StatusPassed {
		t.Errorf("encoding server should yield one passed vuln-fuzz finding, got %+v", findings)
	}
}

func TestVulnCheckerUnreachableIsInformationalError(t *testing.T) {
	target, err := ParseTarget("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("ParseTarget failed: %v", err)
	}

	chk := &VulnChecker{Timeout: 500 * time.Millisecond}
	findings := chk.Check(context.Background(), target)

	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	f := findings[0]
	if f.ID != "vuln-fuzz" || f.Status != StatusError {
		t.Errorf("got %s/%s, want vuln-fuzz/error", f.ID, f.Status)
	}
	// Severity info keeps the failed probe from denting the score.
	if f.Severity != SeverityInfo {
		t.Errorf("severity = %s, want info", f.Severity)
	}
	if score, _ := Score(findings); score != 100 {
		t.Errorf("failed fuzz probe changed the score to %d, want 100", score)
	}
}
