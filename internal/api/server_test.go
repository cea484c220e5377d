package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"meikan/internal/api"
	"meikan/internal/jobs"
	"meikan/internal/testsupport"
)

func startServer(t *testing.T) (*api.Server, *jobs.Store) {
	t.Helper()

	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	server := api.NewServer("127.0.0.1:0", api.NewJobService(store), nil)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := server.Start(ctx); err != nil {
		t.Fatalf("start server: %v", err)
	}
	t.Cleanup(server.Stop)
	return server, store
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestSubmitAndGetJob(t *testing.T) {
	server, _ := startServer(t)
	base := "http://" + server.Addr()

	payload := bytes.NewBufferString(`{"dataset_path":"/data/roster.csv","institution":"早稲田大学"}`)
	resp, err := http.Post(base+"/api/jobs", "application/json", payload)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST status = %d, want 201", resp.StatusCode)
	}
	var created api.JobView
	decodeBody(t, resp, &created)
	if created.ID == "" || created.Status != "queued" {
		t.Fatalf("created job = %+v", created)
	}
	if created.Institution != "早稲田大学" {
		t.Errorf("institution = %q", created.Institution)
	}

	resp, err = http.Get(base + "/api/jobs/" + created.ID)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", resp.StatusCode)
	}
	var fetched api.JobView
	decodeBody(t, resp, &fetched)
	if fetched.ID != created.ID {
		t.Errorf("fetched %q, want %q", fetched.ID, created.ID)
	}
}

func TestSubmitRejectsIncompleteRequest(t *testing.T) {
	server, _ := startServer(t)
	base := "http://" + server.Addr()

	resp, err := http.Post(base+"/api/jobs", "application/json",
		bytes.NewBufferString(`{"dataset_path":"/data/roster.csv"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing institution", resp.StatusCode)
	}

	resp, err = http.Post(base+"/api/jobs", "application/json", bytes.NewBufferString(`{not json`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for invalid JSON", resp.StatusCode)
	}
}

func TestGetMissingJob(t *testing.T) {
	server, _ := startServer(t)

	resp, err := http.Get("http://" + server.Addr() + "/api/jobs/no-such-id")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListJobsFilter(t *testing.T) {
	server, store := startServer(t)
	base := "http://" + server.Addr()
	ctx := context.Background()

	if _, err := store.Create(ctx, jobs.Request{DatasetPath: "/a.csv", Institution: "早稲田大学"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, jobs.Request{DatasetPath: "/b.csv", Institution: "慶應義塾大学"}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatal(err)
	}

	var payload struct {
		Jobs []api.JobView `json:"jobs"`
	}

	resp, err := http.Get(base + "/api/jobs")
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, &payload)
	if len(payload.Jobs) != 2 {
		t.Errorf("unfiltered list returned %d jobs, want 2", len(payload.Jobs))
	}

	resp, err = http.Get(base + "/api/jobs?status=processing")
	if err != nil {
		t.Fatal(err)
	}
	decodeBody(t, resp, &payload)
	if len(payload.Jobs) != 1 {
		t.Errorf("processing filter returned %d jobs, want 1", len(payload.Jobs))
	}

	resp, err = http.Get(base + "/api/jobs?status=bogus")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bogus filter status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteJob(t *testing.T) {
	server, store := startServer(t)
	base := "http://" + server.Addr()

	job, err := store.Create(context.Background(), jobs.Request{DatasetPath: "/a.csv", Institution: "早稲田大学"})
	if err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/jobs/%s", base, job.ID), nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	server, _ := startServer(t)

	resp, err := http.Get("http://" + server.Addr() + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", resp.StatusCode)
	}
}
