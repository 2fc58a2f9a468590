package progress

import (
	"testing"
	"time"

	"github.com/Bahjat/llms-txt-generator/internal/model"
)

func TestChannel_DeliversInOrder(t *testing.T) {
	ch := NewChannel(0)

	go func() {
		defer ch.Close()
		for i := range 3 {
			ch.Publish(model.ProgressSnapshot{Status: model.StatusScraping, ProcessedURLs: i})
		}
		ch.Publish(model.ProgressSnapshot{Status: model.StatusCompleted, ProcessedURLs: 3})
	}()

	var got []model.ProgressSnapshot
	for s := range ch.Events() {
		got = append(got, s)
	}

	if len(got) != 4 {
		t.Fatalf("received %d snapshots, want 4", len(got))
	}
	for i, s := range got {
		if s.ProcessedURLs != i {
			t.Errorf("snapshot %d ProcessedURLs = %d", i, s.ProcessedURLs)
		}
	}
	if got[3].Status != model.StatusCompleted {
		t.Errorf("last status = %q, want %q", got[3].Status, model.StatusCompleted)
	}
}

func TestChannel_PublishAfterAbandon(t *testing.T) {
	ch := NewChannel(0)
	ch.Abandon()

	done := make(chan bool, 1)
	go func() {
		done <- ch.Publish(model.ProgressSnapshot{Status: model.StatusScraping})
	}()

	select {
	case ok := <-done:
		if ok {
			t.Error("Publish after Abandon should report false")
		}
	case <-time.After(time.Second):
		t.Fatal("Publish blocked after the consumer abandoned the channel")
	}

	if !ch.Abandoned() {
		t.Error("Abandoned() = false, want true")
	}
}

func TestChannel_AbandonUnblocksWaitingPublisher(t *testing.T) {
	ch := NewChannel(0)

	done := make(chan bool, 1)
	go func() {
		done <- ch.Publish(model.ProgressSnapshot{Status: model.StatusScraping})
	}()

	time.Sleep(10 * time.Millisecond)
	ch.Abandon()

	select {
	case ok := <-done:
		if ok {
			t.Error("Publish should report false once abandoned")
		}
	case <-time.After(time.Second):
		t.Fatal("waiting Publish was not released by Abandon")
	}
}

func TestChannel_CloseAndAbandonAreIdempotent(t *testing.T) {
	ch := NewChannel(1)
	ch.Close()
	ch.Close()
	ch.Abandon()
	ch.Abandon()

	if _, ok := <-ch.Events(); ok {
		t.Error("expected closed events channel")
	}
}
