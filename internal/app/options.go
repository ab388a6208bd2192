package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：api 只提供 HTTP，worker 持有回收器与队列消费者，all 两者兼有
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// ParseMode 校验命令行传入的启动模式，空值视为 all
func ParseMode(raw string) (string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "":
		return ModeAll, nil
	case ModeAll, ModeAPI, ModeWorker:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want all, api or worker)", raw)
	}
}

func servesHTTP(mode string) bool {
	return mode == ModeAll || mode == ModeAPI
}

func ownsReaper(mode string) bool {
	return mode == ModeAll || mode == ModeWorker
}

// normalizeOptions 补齐默认参数；停机等待至少覆盖一轮回收的存储超时
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
		if opts.Config != nil {
			if ioTimeout := opts.Config.Booking.ReaperIOTimeout(); ioTimeout+5*time.Second > opts.ShutdownTimeout {
				opts.ShutdownTimeout = ioTimeout + 5*time.Second
			}
		}
	}
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}
