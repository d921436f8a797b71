package main

import (
	"fmt"

	"gosshub/internal/config"
	"gosshub/internal/notify"

	goredis "github.com/redis/go-redis/v9"
)

// newNotifier picks the delivery backend named in cfg.
func newNotifier(cfg config.NotifyConfig, rdb *goredis.Client) (notify.Notifier, error) {
	switch cfg.Backend {
	case "", "log":
		return notify.LogNotifier{}, nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("notify backend redis needs a reachable redis server")
		}
		return notify.NewQueueNotifier(rdb, cfg.QueueKey), nil
	case "mailgun":
		if cfg.MailgunKey == "" {
			return nil, fmt.Errorf("notify backend mailgun needs MAILGUN_KEY")
		}
		return notify.NewMailgunNotifier(cfg.MailgunURL, cfg.MailgunKey, cfg.From), nil
	default:
		return nil, fmt.Errorf("unknown notify backend %q", cfg.Backend)
	}
}
