package forecast

// ResultCache stores serialized forecasts by beat. Implementations must be
// safe for concurrent use and compute each beat at most once per key.
type ResultCache interface {
	Get(beat int) ([]byte, bool)
	Set(beat int, forecast []byte)
}

// NopCache never holds anything. Forecasts are recomputed on every query.
type NopCache struct{}

func (NopCache) Get(int) ([]byte, bool) { return nil, false }

func (NopCache) Set(int, []byte) {}
