package workflow

import (
	"context"
	"sync"
	"testing"

	"bitbucket.org/mmdatafocus/invoiceflow_backend/utils"
)

func TestWithConfigurationLock_SerializesWrites(t *testing.T) {
	const workers = 50
	var counter int
	var wg sync.WaitGroup

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			err := WithConfigurationLock(context.Background(), "lock-test-1", func() error {
				// Unsynchronized read-modify-write; the lock must make it safe.
				v := counter
				counter = v + 1
				return nil
			})
			if err != nil {
				t.Errorf("WithConfigurationLock error: %v", err)
			}
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("expected counter %d, got %d", workers, counter)
	}
}

func TestWithConfigurationLock_IndependentIDsDoNotBlock(t *testing.T) {
	release := make(chan struct{})
	holding := make(chan struct{})

	go func() {
		_ = WithConfigurationLock(context.Background(), "lock-test-a", func() error {
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	done := make(chan struct{})
	go func() {
		_ = WithConfigurationLock(context.Background(), "lock-test-b", func() error {
			return nil
		})
		close(done)
	}()

	<-done
	close(release)
}

func TestTryBeginGeneration_SecondCallerRefused(t *testing.T) {
	const id = "gen-test-1"
	if err := TryBeginGeneration(id); err != nil {
		t.Fatalf("first TryBeginGeneration error: %v", err)
	}
	if err := TryBeginGeneration(id); err != utils.ErrorAlreadyGenerating {
		t.Fatalf("second TryBeginGeneration expected ErrorAlreadyGenerating, got %v", err)
	}

	EndGeneration(id)
	if err := TryBeginGeneration(id); err != nil {
		t.Fatalf("TryBeginGeneration after EndGeneration error: %v", err)
	}
	EndGeneration(id)
}

func TestTryBeginGeneration_DistinctIDsIndependent(t *testing.T) {
	if err := TryBeginGeneration("gen-test-a"); err != nil {
		t.Fatalf("TryBeginGeneration(a) error: %v", err)
	}
	defer EndGeneration("gen-test-a")

	if err := TryBeginGeneration("gen-test-b"); err != nil {
		t.Fatalf("TryBeginGeneration(b) error: %v", err)
	}
	EndGeneration("gen-test-b")
}
