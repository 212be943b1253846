package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Alextheon3/apexmatch-sub001/internal/config"
	"github.com/Alextheon3/apexmatch-sub001/internal/event"
	"github.com/Alextheon3/apexmatch-sub001/internal/observe"
	"github.com/Alextheon3/apexmatch-sub001/internal/protocol"
	"github.com/Alextheon3/apexmatch-sub001/internal/realtime"
	"github.com/Alextheon3/apexmatch-sub001/internal/token"
	"github.com/Alextheon3/apexmatch-sub001/internal/transport"
	"github.com/Alextheon3/apexmatch-sub001/pkg/logger"
)

// probe 是一个交互式终端客户端：连接后端，打印入站事件，
// 将标准输入逐行作为聊天消息发送。
func main() {
	cfg := config.Load()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := observe.StartHTTP(cfg.MetricsAddr); err != nil {
				logger.L().Sugar().Warnw("metrics_http_error", "err", err)
			}
		}()
	}

	var provider token.Provider
	if cfg.RedisAddr != "" {
		store := token.NewRedisStore(cfg.RedisAddr, cfg.RedisDB, cfg.RedisKey)
		defer store.Close()
		provider = store.Provider()
	}

	mgr, err := realtime.New(realtime.Config{
		URL:               cfg.URL,
		Dialer:            &transport.WSDialer{},
		Credentials:       provider,
		QueueCapacity:     cfg.QueueCapacity,
		HeartbeatInterval: cfg.HeartbeatInterval,
		DeliveryTimeout:   cfg.DeliveryTimeout,
		ConnectTimeout:    cfg.ConnectTimeout,
	})
	if err != nil {
		logger.L().Sugar().Errorw("manager_init_failed", "err", err)
		os.Exit(1)
	}

	mgr.Subscribe(event.StateChanged, func(e event.Event) {
		sc := e.(*event.StateChange)
		fmt.Printf("* state: %s -> %s\n", sc.From, sc.To)
	})
	mgr.Subscribe(event.Message(protocol.MsgChat), func(e event.Event) {
		env := e.(*event.InboundMessage).Envelope
		if p, err := protocol.DecodePayload(env); err == nil {
			if chat, ok := p.(*protocol.ChatPayload); ok {
				fmt.Printf("[%s] %s: %s\n", chat.MatchID, env.Sender, chat.Text)
			}
		}
	})
	mgr.Subscribe(event.Message(protocol.MsgNewMatch), func(e event.Event) {
		fmt.Println("* new match!")
	})
	mgr.Subscribe(event.DeliveryExpired, func(e event.Event) {
		fmt.Printf("! not delivered: %s\n", e.(*event.Expired).Envelope.ID)
	})
	mgr.Subscribe(event.QueueDropped, func(e event.Event) {
		fmt.Printf("! dropped: %s\n", e.(*event.Dropped).Envelope.ID)
	})
	mgr.Subscribe(event.AuthFailed, func(e event.Event) {
		fmt.Printf("! auth failed: %s\n", e.(*event.AuthFailure).Reason)
	})
	mgr.Subscribe(event.ConnFailed, func(e event.Event) {
		fmt.Println("! connection failed, type /connect to retry")
	})

	if err := mgr.Connect(cfg.Token, cfg.UserID); err != nil {
		logger.L().Sugar().Errorw("connect_failed", "err", err)
		os.Exit(1)
	}
	defer mgr.Disconnect()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		mgr.Disconnect()
		os.Exit(0)
	}()

	matchID := ""
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: /match <id>, /typing, /read <msgid>, /reveal, /info, /connect, /quit")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case line == "/quit":
			return
		case line == "/info":
			info := mgr.Info()
			fmt.Printf("* %s auth=%v queued=%d pending=%d attempts=%d\n",
				info.State, info.Authenticated, info.QueuedCount, info.PendingCount, info.ReconnectAttempts)
		case line == "/connect":
			_ = mgr.Connect(cfg.Token, cfg.UserID)
		case strings.HasPrefix(line, "/match "):
			matchID = strings.TrimSpace(strings.TrimPrefix(line, "/match "))
		case line == "/typing":
			_, _ = mgr.SendTypingStart(matchID)
		case strings.HasPrefix(line, "/read "):
			_, _ = mgr.MarkMessageRead(matchID, strings.TrimSpace(strings.TrimPrefix(line, "/read ")))
		case line == "/reveal":
			_, _ = mgr.SendRevealRequest(matchID)
		default:
			if id, err := mgr.SendChatMessage(matchID, line); err == nil {
				fmt.Printf("> sent %s\n", id)
			}
		}
	}
}
