package common_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Trizly-xyz/trizlySite/internal/common"
)

// ExampleDo_withOptions retries a flaky call with a short backoff.
func ExampleDo_withOptions() {
	attempts := 0

	err := common.Do(context.Background(),
		func() error {
			attempts++
			if attempts < 3 {
				return errors.New("502 bad gateway")
			}
			return nil
		},
		common.WithMaxRetries(5),
		common.WithInitialDelay(time.Millisecond),
	)

	fmt.Println(attempts, err)
	// Output: 3 <nil>
}

// ExampleNotFoundIsPermanent stops immediately on a missing resource.
func ExampleNotFoundIsPermanent() {
	attempts := 0

	err := common.Do(context.Background(),
		func() error {
			attempts++
			return common.NewError(common.ErrCodeNotFound, "no such owner")
		},
		common.WithInitialDelay(time.Millisecond),
		common.WithRetryIf(common.NotFoundIsPermanent),
	)

	fmt.Println(attempts, errors.Is(err, common.ErrNotFound))
	// Output: 1 true
}
