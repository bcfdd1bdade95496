// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
	"time"
)

func TestStreamingBuffer_FlushOnBatchSize(t *testing.T) {
	sb := NewStreamingBufferWithConfig(3, 30)

	sb.Write("a")
	sb.Write("b")
	if _, ok := sb.Flush(); ok {
		t.Error("should not flush below batch size before the time window")
	}

	sb.Write("c")
	content, ok := sb.Flush()
	if !ok {
		t.Fatal("batch size reached, should flush")
	}
	if content != "abc" {
		t.Errorf("content = %q, want abc", content)
	}
	if sb.Pending() != 0 {
		t.Errorf("pending = %d after flush", sb.Pending())
	}
}

func TestStreamingBuffer_FlushOnTime(t *testing.T) {
	sb := NewStreamingBufferWithConfig(100, 60)

	sb.Write("slow")
	time.Sleep(25 * time.Millisecond)

	content, ok := sb.Flush()
	if !ok {
		t.Fatal("time threshold passed, should flush")
	}
	if content != "slow" {
		t.Errorf("content = %q", content)
	}
}

func TestStreamingBuffer_ForceFlush(t *testing.T) {
	sb := NewStreamingBuffer()

	if _, ok := sb.ForceFlush(); ok {
		t.Error("empty buffer should not force-flush")
	}

	sb.Write("tail")
	content, ok := sb.ForceFlush()
	if !ok || content != "tail" {
		t.Errorf("ForceFlush = %q, %v", content, ok)
	}
}

func TestStreamingBuffer_Reset(t *testing.T) {
	sb := NewStreamingBuffer()
	sb.Write("discard me")
	sb.Reset()

	if _, ok := sb.ForceFlush(); ok {
		t.Error("reset buffer should be empty")
	}
}

func TestStreamingBuffer_ConfigClamping(t *testing.T) {
	sb := NewStreamingBufferWithConfig(-1, 999)
	// Invalid values fall back to defaults; writing one delta should not
	// trigger a size-based flush.
	sb.Write("x")
	if sb.deltaCount >= sb.batchSize {
		t.Error("defaults should apply for out-of-range config")
	}
}
