package quran

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"github.com/trezcool/amal/core"
)

var ErrTafsirUnavailable = errors.New("tafsir service unavailable")

type (
	AyahTafsir struct {
		Ayah int    `json:"ayah"`
		Text string `json:"text"`
	}

	Tafsir struct {
		Surah int          `json:"surah"`
		Name  string       `json:"name"`
		Ayahs []AyahTafsir `json:"ayahs"`
	}

	// TafsirSource provides the commentary of a whole surah.
	TafsirSource interface {
		Surah(ctx context.Context, n int) (Tafsir, error)
	}

	// TafsirClient fetches tafsir from an equran.id compatible API (GET <base>/<surah>) and keeps
	// every fetched surah in memory. Concurrent requests for the same surah share one fetch.
	TafsirClient struct {
		baseURL string
		client  *http.Client
		log     core.Logger

		mu    sync.RWMutex
		cache map[int]Tafsir
		group singleflight.Group
	}

	tafsirResponse struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Data    struct {
			Number    int    `json:"nomor"`
			NameLatin string `json:"namaLatin"`
			Tafsir    []struct {
				Ayah int    `json:"ayat"`
				Text string `json:"teks"`
			} `json:"tafsir"`
		} `json:"data"`
	}
)

var _ TafsirSource = (*TafsirClient)(nil)

func NewTafsirClient(baseURL string, timeout time.Duration, logger core.Logger) *TafsirClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TafsirClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     logger,
		cache:   make(map[int]Tafsir),
	}
}

func (c *TafsirClient) Surah(ctx context.Context, n int) (Tafsir, error) {
	if _, ok := SurahByNumber(n); !ok {
		return Tafsir{}, ErrSurahNotFound
	}

	c.mu.RLock()
	t, ok := c.cache[n]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	// the shared fetch outlives any single caller, bounded by the client timeout
	ch := c.group.DoChan(strconv.Itoa(n), func() (interface{}, error) {
		c.mu.RLock()
		t, ok := c.cache[n]
		c.mu.RUnlock()
		if ok {
			return t, nil
		}

		t, err := c.fetch(context.WithoutCancel(ctx), n)
		if err != nil {
			return Tafsir{}, err
		}
		c.mu.Lock()
		c.cache[n] = t
		c.mu.Unlock()
		return t, nil
	})

	select {
	case <-ctx.Done():
		return Tafsir{}, errors.Wrap(ErrTafsirUnavailable, ctx.Err().Error())
	case res := <-ch:
		if res.Err != nil {
			if c.log != nil {
				c.log.Warn(res.Err.Error(), map[string]interface{}{"surah": n})
			}
			return Tafsir{}, ErrTafsirUnavailable
		}
		return res.Val.(Tafsir), nil
	}
}

func (c *TafsirClient) fetch(ctx context.Context, n int) (Tafsir, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strconv.Itoa(n), nil)
	if err != nil {
		return Tafsir{}, errors.Wrap(err, "building tafsir request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Tafsir{}, errors.Wrap(err, "requesting tafsir")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Tafsir{}, errors.Errorf("tafsir API responded %d", resp.StatusCode)
	}

	var body tafsirResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Tafsir{}, errors.Wrap(err, "decoding tafsir")
	}
	if body.Data.Number != n || len(body.Data.Tafsir) == 0 {
		return Tafsir{}, errors.Errorf("tafsir API returned no tafsir for surah %d", n)
	}

	t := Tafsir{Surah: n, Name: body.Data.NameLatin, Ayahs: make([]AyahTafsir, 0, len(body.Data.Tafsir))}
	for _, a := range body.Data.Tafsir {
		t.Ayahs = append(t.Ayahs, AyahTafsir{Ayah: a.Ayah, Text: a.Text})
	}
	return t, nil
}

// AyahTafsirOf returns the commentary of a single ayah.
func AyahTafsirOf(ctx context.Context, src TafsirSource, p Position) (AyahTafsir, error) {
	if !p.Valid() {
		return AyahTafsir{}, positionError()
	}
	t, err := src.Surah(ctx, p.Surah)
	if err != nil {
		return AyahTafsir{}, err
	}
	for _, a := range t.Ayahs {
		if a.Ayah == p.Ayah {
			return a, nil
		}
	}
	return AyahTafsir{}, ErrTafsirUnavailable
}
