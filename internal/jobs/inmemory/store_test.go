package inmemory

import (
	"context"
	"testing"

	"github.com/ohalushko/moneta/internal/jobs"
)

func TestStoreSaveAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	job := &jobs.StatementJob{
		JobID:    "j1",
		Type:     jobs.JobTypeSyncWallet,
		WalletID: "wallet-1",
		Status:   jobs.JobStatusPending,
	}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}

	got, err := s.GetJob(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.WalletID != "wallet-1" || got.Status != jobs.JobStatusPending {
		t.Errorf("got %+v", got)
	}

	// Mutating the returned copy must not touch the stored job.
	got.Status = jobs.JobStatusFailed
	again, err := s.GetJob(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if again.Status != jobs.JobStatusPending {
		t.Errorf("stored job mutated through returned copy: %s", again.Status)
	}
}

func TestStoreSaveRequiresID(t *testing.T) {
	s := NewStore()
	if err := s.SaveJob(context.Background(), &jobs.StatementJob{}); err == nil {
		t.Fatal("expected error for missing job id")
	}
}

func TestStoreGetMissing(t *testing.T) {
	s := NewStore()
	if _, err := s.GetJob(context.Background(), "nope"); err == nil {
		t.Fatal("expected error for unknown job id")
	}
}

func TestStoreListJobs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	seed := []*jobs.StatementJob{
		{JobID: "a", Type: jobs.JobTypeSyncWallet, WalletID: "w1", Status: jobs.JobStatusCompleted},
		{JobID: "b", Type: jobs.JobTypeSyncWallet, WalletID: "w2", Status: jobs.JobStatusFailed},
		{JobID: "c", Type: jobs.JobTypeImportStatement, WalletID: "w1", Status: jobs.JobStatusCompleted},
	}
	for _, j := range seed {
		if err := s.SaveJob(ctx, j); err != nil {
			t.Fatalf("SaveJob(%s): %v", j.JobID, err)
		}
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   int
	}{
		{"all", jobs.JobFilter{}, 3},
		{"by wallet", jobs.JobFilter{WalletID: "w1"}, 2},
		{"by type", jobs.JobFilter{Type: jobs.JobTypeImportStatement}, 1},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusFailed}, 1},
		{"wallet and status", jobs.JobFilter{WalletID: "w1", Status: jobs.JobStatusCompleted}, 2},
		{"limit", jobs.JobFilter{Limit: 2}, 2},
		{"offset past end", jobs.JobFilter{Offset: 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d jobs, want %d", len(got), tt.want)
			}
		})
	}
}

func TestStoreUpdateJobStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.SaveJob(ctx, &jobs.StatementJob{JobID: "j1", Status: jobs.JobStatusRunning}); err != nil {
		t.Fatalf("SaveJob: %v", err)
	}
	if err := s.UpdateJobStatus(ctx, "j1", jobs.JobStatusFailed, "boom"); err != nil {
		t.Fatalf("UpdateJobStatus: %v", err)
	}

	got, err := s.GetJob(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != jobs.JobStatusFailed || got.Error != "boom" {
		t.Errorf("got status=%s error=%q", got.Status, got.Error)
	}

	if err := s.UpdateJobStatus(ctx, "missing", jobs.JobStatusFailed, ""); err == nil {
		t.Error("expected error for unknown job id")
	}
}
