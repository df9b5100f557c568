// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"testing"

	"github.com/jllopis/proteus/pkg/errors"
)

func TestNewErrorMetrics(t *testing.T) {
	em, err := NewErrorMetrics(context.Background())
	if err != nil {
		t.Fatalf("failed to create error metrics: %v", err)
	}
	if em == nil {
		t.Fatal("expected non-nil ErrorMetrics")
	}
}

func TestRecordErrorMetric(t *testing.T) {
	em, _ := NewErrorMetrics(context.Background())
	ctx := context.Background()

	// Record a ProteusError
	pe := errors.New(errors.CodeToolFailure, "tool failed", nil)
	em.RecordErrorMetric(ctx, pe, "bridge")

	// Record a generic error
	em.RecordErrorMetric(ctx, errors.New(errors.CodeInternal, "generic error", nil), "compiler")

	// Should not panic with nil error or metrics
	em.RecordErrorMetric(ctx, nil, "resolver")
	em.RecordErrorMetric(ctx, pe, "")

	// Nil metrics should not panic
	var nilMetrics *ErrorMetrics
	nilMetrics.RecordErrorMetric(ctx, pe, "bridge")
}

func TestRecordRecovery(t *testing.T) {
	em, _ := NewErrorMetrics(context.Background())
	ctx := context.Background()

	em.RecordRecovery(ctx, errors.CodeToolFailure)
	em.RecordRecovery(ctx, errors.CodeTimeout)
	em.RecordRecovery(ctx, errors.CodeHookFailure)

	var nilMetrics *ErrorMetrics
	nilMetrics.RecordRecovery(ctx, errors.CodeToolFailure)
}

func TestRecordErrorRate(t *testing.T) {
	em, _ := NewErrorMetrics(context.Background())
	ctx := context.Background()

	em.RecordErrorRate(ctx, "bridge", 2.5)
	em.RecordErrorRate(ctx, "compiler", 0.1)
	em.RecordErrorRate(ctx, "memory", 0.0)

	var nilMetrics *ErrorMetrics
	nilMetrics.RecordErrorRate(ctx, "bridge", 1.5)
}

func TestRecordHealthStatus(t *testing.T) {
	em, _ := NewErrorMetrics(context.Background())
	ctx := context.Background()

	// 0 = unhealthy, 1 = degraded, 2 = healthy
	em.RecordHealthStatus(ctx, "bridge", 2)
	em.RecordHealthStatus(ctx, "memory", 1)
	em.RecordHealthStatus(ctx, "upstream", 0)

	var nilMetrics *ErrorMetrics
	nilMetrics.RecordHealthStatus(ctx, "bridge", 2)
}

func TestConcurrentMetrics(t *testing.T) {
	em, _ := NewErrorMetrics(context.Background())
	ctx := context.Background()

	// Simulate concurrent recording
	done := make(chan bool, 3)

	go func() {
		pe := errors.New(errors.CodeHookFailure, "handler exited 1", nil)
		for i := 0; i < 10; i++ {
			em.RecordErrorMetric(ctx, pe, "bridge")
			em.RecordRecovery(ctx, errors.CodeHookFailure)
		}
		done <- true
	}()

	go func() {
		pe := errors.New(errors.CodeToolFailure, "tool timeout", nil)
		for i := 0; i < 10; i++ {
			em.RecordErrorMetric(ctx, pe, "toolrun")
			em.RecordErrorRate(ctx, "toolrun", 1.5+float64(i)*0.1)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 10; i++ {
			em.RecordHealthStatus(ctx, "bridge", int64(i%3))
		}
		done <- true
	}()

	<-done
	<-done
	<-done
}
