// Command demo exercises the order book library directly, in-process:
// it is a demonstration and micro-benchmark, not a served interface.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/2019UGEC100/limitbook/pkg/engine"
	"github.com/2019UGEC100/limitbook/pkg/model"
)

func main() {
	var (
		n       = flag.Int("n", 2000, "number of random orders to submit after the scripted scenario")
		seed    = flag.Int64("seed", 1, "PRNG seed for the random load")
		verbose = flag.Bool("v", false, "debug-level logging")
	)
	flag.Parse()

	logCfg := zap.NewDevelopmentConfig()
	if !*verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := logCfg.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ob := engine.New(engine.DefaultConfig(), logger)
	defer ob.Close()

	runScriptedScenario(ob, logger)
	runRandomLoad(ob, logger, *n, *seed)
}

// runScriptedScenario replays original_source/main.cpp's add/add/add/
// cancel/size sequence against the Go book.
func runScriptedScenario(ob *engine.OrderBook, logger *zap.Logger) {
	logger.Info("running scripted scenario")

	ob.AddOrder(model.NewOrder(model.GoodTillCancel, "1", model.Buy, px(100), px(10)))
	logger.Info("after add 1", zap.Int("size", ob.Size()))

	ob.AddOrder(model.NewOrder(model.GoodTillCancel, "2", model.Sell, px(100), px(10)))
	logger.Info("after add 2 (crosses with 1)", zap.Int("size", ob.Size()))

	ob.AddOrder(model.NewOrder(model.GoodTillCancel, "1", model.Buy, px(100), px(10)))
	logger.Info("after re-add 1 (id is free again once filled, so it rests)", zap.Int("size", ob.Size()))

	ob.CancelOrder("1")
	logger.Info("after cancel 1", zap.Int("size", ob.Size()))
}

// runRandomLoad submits n random GTC/MARKET/FAK/FOK/GFD orders directly
// against the book and reports latency percentiles, the in-process
// analogue of the teacher's cmd/load HTTP benchmark.
func runRandomLoad(ob *engine.OrderBook, logger *zap.Logger, n int, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	types := []model.OrderType{
		model.GoodTillCancel, model.Market, model.FillAndKill, model.FillOrKill, model.GoodForDay,
	}
	sides := []model.Side{model.Buy, model.Sell}

	latencies := make([]time.Duration, 0, n)
	start := time.Now()
	var trades int

	for i := 0; i < n; i++ {
		typ := types[rng.Intn(len(types))]
		side := sides[rng.Intn(len(sides))]
		price := int64(90 + rng.Intn(21))
		qty := int64(1 + rng.Intn(20))

		var o *model.Order
		if typ == model.Market {
			o = model.NewMarketOrder(model.NewOrderID(), side, px(qty))
		} else {
			o = model.NewOrder(typ, model.NewOrderID(), side, px(price), px(qty))
		}

		t0 := time.Now()
		ts := ob.AddOrder(o)
		latencies = append(latencies, time.Since(t0))
		trades += len(ts)
	}

	elapsed := time.Since(start)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	logger.Info("random load complete",
		zap.Int("orders", n),
		zap.Int("trades", trades),
		zap.Int("resting", ob.Size()),
		zap.Duration("elapsed", elapsed),
		zap.Duration("p50", percentile(latencies, 0.50)),
		zap.Duration("p90", percentile(latencies, 0.90)),
		zap.Duration("p99", percentile(latencies, 0.99)),
	)
	fmt.Printf("orders=%d trades=%d resting=%d elapsed=%s p50=%s p90=%s p99=%s\n",
		n, trades, ob.Size(), elapsed,
		percentile(latencies, 0.50), percentile(latencies, 0.90), percentile(latencies, 0.99))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func px(v int64) model.Price {
	return decimal.NewFromInt(v)
}
