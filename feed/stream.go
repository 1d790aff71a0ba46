package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/quantxyz/stratsim/market"
	"github.com/quantxyz/stratsim/sim"
)

// DefaultRetryWait is the pause between websocket reconnect attempts.
const DefaultRetryWait = 5 * time.Second

// LiveFeed subscribes to exchange kline websockets and publishes each
// closed candle onto the bus. One connection per stream; a dropped
// connection is retried until the context is cancelled.
type LiveFeed struct {
	baseURL   string
	streams   []Stream
	retryWait time.Duration
	log       *zap.Logger
}

func NewLiveFeed(baseURL string, streams []Stream, log *zap.Logger) *LiveFeed {
	if log == nil {
		log = zap.NewNop()
	}
	return &LiveFeed{
		baseURL:   strings.TrimRight(baseURL, "/"),
		streams:   streams,
		retryWait: DefaultRetryWait,
		log:       log,
	}
}

// Produce blocks until ctx is cancelled; live streams never end on their
// own.
func (f *LiveFeed) Produce(ctx context.Context, bus *sim.Bus) {
	done := make(chan struct{}, len(f.streams))
	for _, s := range f.streams {
		if !market.KnownInterval(s.Interval) {
			f.log.Warn("skipping live stream with unknown interval",
				zap.String("symbol", s.Symbol),
				zap.String("interval", s.Interval))
			done <- struct{}{}
			continue
		}
		go func(s Stream) {
			defer func() { done <- struct{}{} }()
			f.run(ctx, bus, s)
		}(s)
	}
	for range f.streams {
		<-done
	}
}

// run dials, reads until the connection drops, and redials after the
// retry pause.
func (f *LiveFeed) run(ctx context.Context, bus *sim.Bus, s Stream) {
	url := f.streamURL(s)

	for {
		if err := f.readLoop(ctx, bus, s, url); err != nil {
			f.log.Warn("live stream interrupted",
				zap.String("url", url), zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(f.retryWait):
		}
	}
}

func (f *LiveFeed) readLoop(ctx context.Context, bus *sim.Bus, s Stream, url string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	// Unblock ReadMessage when the context dies.
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
			conn.Close()
		}
	}()

	f.log.Info("live stream connected", zap.String("url", url))

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		bar, final, err := parseKline(msg)
		if err != nil {
			f.log.Warn("dropping unparseable kline",
				zap.String("url", url), zap.Error(err))
			continue
		}
		if !final {
			continue
		}

		if err := bus.Publish(sim.CandleEvent(bar)); err != nil {
			return nil
		}
	}
}

func (f *LiveFeed) streamURL(s Stream) string {
	return fmt.Sprintf("%s/ws/%s@kline_%s",
		f.baseURL, strings.ToLower(s.Symbol), s.Interval)
}

// klineMsg mirrors the exchange kline payload. Prices arrive as strings.
type klineMsg struct {
	Event string `json:"e"`
	// EventTime absorbs the payload's "E" key; without it, Go's
	// case-insensitive JSON matching routes "E" into Event and fails.
	EventTime int64 `json:"E"`
	K         struct {
		Start    int64  `json:"t"`
		Symbol   string `json:"s"`
		Interval string `json:"i"`
		Open     string `json:"o"`
		Close    string `json:"c"`
		High     string `json:"h"`
		Low      string `json:"l"`
		Volume   string `json:"v"`
		Final    bool   `json:"x"`
	} `json:"k"`
}

// parseKline decodes one websocket message into a bar. The bool reports
// whether the candle is closed; callers skip forming candles.
func parseKline(msg []byte) (market.Bar, bool, error) {
	var m klineMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return market.Bar{}, false, err
	}
	if m.Event != "kline" {
		return market.Bar{}, false, fmt.Errorf("unexpected event %q", m.Event)
	}

	b := market.Bar{
		Symbol:    m.K.Symbol,
		Interval:  m.K.Interval,
		Timestamp: market.NormalizeMillis(m.K.Start),
	}

	var err error
	if b.Open, err = strconv.ParseFloat(m.K.Open, 64); err != nil {
		return market.Bar{}, false, fmt.Errorf("bad open %q: %w", m.K.Open, err)
	}
	if b.High, err = strconv.ParseFloat(m.K.High, 64); err != nil {
		return market.Bar{}, false, fmt.Errorf("bad high %q: %w", m.K.High, err)
	}
	if b.Low, err = strconv.ParseFloat(m.K.Low, 64); err != nil {
		return market.Bar{}, false, fmt.Errorf("bad low %q: %w", m.K.Low, err)
	}
	if b.Close, err = strconv.ParseFloat(m.K.Close, 64); err != nil {
		return market.Bar{}, false, fmt.Errorf("bad close %q: %w", m.K.Close, err)
	}
	if b.Volume, err = strconv.ParseFloat(m.K.Volume, 64); err != nil {
		return market.Bar{}, false, fmt.Errorf("bad volume %q: %w", m.K.Volume, err)
	}
	return b, m.K.Final, nil
}
