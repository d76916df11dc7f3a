// internal/pkg/retry/retry.go
package retry

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
)

// Policy 描述一次有界重试：最多 MaxAttempts 次尝试，
// 第 n 次失败后等待 BaseDelay * 1.5^(n-1) 再试。
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Do 以指数退避方式执行 fn，直到成功、尝试次数耗尽或 ctx 被取消。
// 只应作用于外部协作方调用（Catalog、订单提交等），不要包裹纯逻辑。
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "retry aborted")
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}

		delay := time.Duration(float64(p.BaseDelay) * math.Pow(1.5, float64(attempt-1)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "retry aborted")
		}
	}
	return errors.Wrapf(lastErr, "exhausted %d attempts", p.MaxAttempts)
}
