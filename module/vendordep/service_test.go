package vendordep

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"github.com/frctools/vendordep/module/vendordep/httpclient"
	"github.com/frctools/vendordep/module/vendordep/manifest"
	"github.com/frctools/vendordep/module/vendordep/types"
)

func TestServiceRunEndToEnd(t *testing.T) {
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		if r.URL.Path == "/org/example/lib/1.0.0/lib-1.0.0.jar" {
			w.Write([]byte("jar bytes"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	raw := fmt.Sprintf(`{
		"name": "mylib", "version": "1.0.0",
		"mavenUrls": [%q],
		"javaDependencies": [{"groupId": "org.example", "artifactId": "lib", "version": "1.0.0"}],
		"jniDependencies": [], "cppDependencies": []
	}`, srv.URL+"/")

	svc, err := NewService(Config{StoreRoot: t.TempDir()},
		manifest.BytesSource{"mylib.json": []byte(raw)},
		httpclient.NewClient(httpclient.WithRetryMax(0)))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	platform, _ := types.ParsePlatform("linuxx86-64")
	report, err := svc.Run(context.Background(), []string{"mylib.json"}, platform)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.ResolutionErrors) != 0 {
		t.Fatalf("resolution errors = %v", report.ResolutionErrors)
	}
	if len(report.Results) != 1 || report.Results[0].Status != types.StatusSuccess {
		t.Fatalf("results = %+v, want one success", report.Results)
	}
	got, err := os.ReadFile(report.Results[0].FinalPath)
	if err != nil || string(got) != "jar bytes" {
		t.Errorf("stored jar = %q, %v", got, err)
	}

	// A second pass against the warm store stays off the network.
	cold := atomic.LoadInt64(&hits)
	second, err := svc.Run(context.Background(), []string{"mylib.json"}, platform)
	if err != nil {
		t.Fatalf("warm Run() error = %v", err)
	}
	if second.Results[0].Status != types.StatusSkip {
		t.Errorf("warm result = %+v, want skip", second.Results[0])
	}
	if warm := atomic.LoadInt64(&hits); warm != cold {
		t.Errorf("warm run touched the network: %d requests, want %d", warm, cold)
	}
}

func TestServiceRunRecordsBadManifests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("jar bytes"))
	}))
	defer srv.Close()

	good := fmt.Sprintf(`{
		"name": "good", "version": "1.0.0", "mavenUrls": [%q],
		"javaDependencies": [{"groupId": "g", "artifactId": "a", "version": "1"}],
		"jniDependencies": [], "cppDependencies": []
	}`, srv.URL+"/")

	svc, err := NewService(Config{StoreRoot: t.TempDir()},
		manifest.BytesSource{
			"good.json": []byte(good),
			"bad.json":  []byte(`{"name": `),
		},
		httpclient.NewClient(httpclient.WithRetryMax(0)))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	platform, _ := types.ParsePlatform("linuxx86-64")
	report, err := svc.Run(context.Background(), []string{"good.json", "bad.json"}, platform)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.ResolutionErrors) != 1 {
		t.Fatalf("resolution errors = %v, want the bad manifest only", report.ResolutionErrors)
	}
	if len(report.Results) != 1 || report.Results[0].Status != types.StatusSuccess {
		t.Errorf("good manifest was not fetched: %+v", report.Results)
	}
}

func TestServiceRunAbortsOnConflict(t *testing.T) {
	alpha := `{
		"name": "alpha", "version": "1", "uuid": "11111111-1111-1111-1111-111111111111",
		"conflictsWith": [{"uuid": "22222222-2222-2222-2222-222222222222", "errorMessage": "pick one"}],
		"javaDependencies": [{"groupId": "g", "artifactId": "a", "version": "1"}],
		"jniDependencies": [], "cppDependencies": []
	}`
	beta := `{
		"name": "beta", "version": "1", "uuid": "22222222-2222-2222-2222-222222222222",
		"javaDependencies": [{"groupId": "g", "artifactId": "b", "version": "1"}],
		"jniDependencies": [], "cppDependencies": []
	}`

	svc, err := NewService(Config{StoreRoot: t.TempDir()},
		manifest.BytesSource{"alpha.json": []byte(alpha), "beta.json": []byte(beta)},
		httpclient.NewClient())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	platform, _ := types.ParsePlatform("linuxx86-64")
	report, err := svc.Run(context.Background(), []string{"alpha.json", "beta.json"}, platform)
	var ce *types.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("Run() error = %v, want ConflictError", err)
	}
	if len(report.Results) != 0 {
		t.Errorf("conflicting batch still fetched artifacts: %+v", report.Results)
	}
}
