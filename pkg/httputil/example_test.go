package httputil_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/chatstack/pkg/httputil"
)

func ExampleRetry() {
	calls := 0
	err := httputil.Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 2 {
			return httputil.Retryable(errors.New("connection reset"))
		}
		return nil
	})
	fmt.Println("Calls:", calls)
	fmt.Println("Error:", err)
	// Output:
	// Calls: 2
	// Error: <nil>
}

func ExampleRetryableStatus() {
	fmt.Println(httputil.RetryableStatus(503))
	fmt.Println(httputil.RetryableStatus(404))
	// Output:
	// true
	// false
}
