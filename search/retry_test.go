// Copyright 2025 Ailsa Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff(t *testing.T) {
	t.Run("succeeds on first attempt", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			return nil
		}, 3, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		}, 5, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("returns last error when attempts exhausted", func(t *testing.T) {
		lastErr := errors.New("still down")
		attempts := 0
		err := RetryWithBackoff(context.Background(), func() error {
			attempts++
			return lastErr
		}, 3, time.Millisecond)

		assert.Equal(t, lastErr, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("rejects non-positive attempt count", func(t *testing.T) {
		err := RetryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
		assert.Equal(t, ErrInvalidMaxAttempts, err)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		attempts := 0
		err := RetryWithBackoff(ctx, func() error {
			attempts++
			return errors.New("should not run")
		}, 3, time.Millisecond)

		assert.Equal(t, context.Canceled, err)
		assert.Equal(t, 0, attempts)
	})

	t.Run("cancellation interrupts the backoff sleep", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		attempts := 0
		done := make(chan error, 1)
		go func() {
			done <- RetryWithBackoff(ctx, func() error {
				attempts++
				return errors.New("down")
			}, 3, time.Hour)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.Equal(t, context.Canceled, err)
			assert.Equal(t, 1, attempts)
		case <-time.After(time.Second):
			t.Fatal("retry did not stop on cancellation")
		}
	})
}
