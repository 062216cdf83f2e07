package quran

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/amal/core"
)

func TestMetadata(t *testing.T) {
	total := 0
	for i, s := range Surahs() {
		assert.Equal(t, i+1, s.Number)
		total += s.Ayahs
	}
	assert.Equal(t, AyahCount, total)

	s, ok := SurahByNumber(18)
	require.True(t, ok)
	assert.Equal(t, "Al-Kahf", s.Name)
	assert.Equal(t, 110, s.Ayahs)
	_, ok = SurahByNumber(115)
	assert.False(t, ok)
}

func TestPosition(t *testing.T) {
	tests := []struct {
		pos   Position
		valid bool
		index int
		juz   int
	}{
		{Position{1, 1}, true, 1, 1},
		{Position{1, 7}, true, 7, 1},
		{Position{2, 1}, true, 8, 1},
		{Position{2, 141}, true, 148, 1},
		{Position{2, 142}, true, 149, 2},
		{Position{2, 253}, true, 260, 3},
		{Position{18, 74}, true, 2214, 15},
		{Position{18, 75}, true, 2215, 16},
		{Position{77, 50}, true, 5672, 29},
		{Position{78, 1}, true, 5673, 30},
		{Position{114, 6}, true, 6236, 30},
		{Position{2, 287}, false, 0, 0},
		{Position{0, 1}, false, 0, 0},
		{Position{115, 1}, false, 0, 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d:%d", tt.pos.Surah, tt.pos.Ayah), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.pos.Valid())
			assert.Equal(t, tt.index, tt.pos.Index())
			assert.Equal(t, tt.juz, JuzOf(tt.pos))
		})
	}
}

func TestJuzList(t *testing.T) {
	list := JuzList()
	require.Len(t, list, JuzCount)
	assert.Equal(t, Juz{Number: 1, Start: Position{1, 1}, End: Position{2, 141}}, list[0])
	assert.Equal(t, Juz{Number: 13, Start: Position{12, 53}, End: Position{14, 52}}, list[12])
	assert.Equal(t, Position{114, 6}, list[29].End)

	for _, j := range list {
		assert.Equal(t, j.Number, JuzOf(j.Start))
		assert.Equal(t, j.Number, JuzOf(j.End))
	}

	_, ok := JuzStart(31)
	assert.False(t, ok)
}

func TestAudio(t *testing.T) {
	assert.Equal(t,
		"https://everyayah.com/data/Alafasy_128kbps/002255.mp3",
		AudioURL("https://everyayah.com/data/", "Alafasy_128kbps", Position{2, 255}))

	urls, ok := SurahAudio("http://cdn", "r", 112)
	require.True(t, ok)
	assert.Equal(t, []string{"http://cdn/r/112001.mp3", "http://cdn/r/112002.mp3", "http://cdn/r/112003.mp3", "http://cdn/r/112004.mp3"}, urls)

	_, ok = SurahAudio("http://cdn", "r", 0)
	assert.False(t, ok)
}

func TestNewBookmark_Validate(t *testing.T) {
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	tests := []struct {
		name    string
		data    NewBookmark
		wantErr bool
	}{
		{name: "valid", data: NewBookmark{Surah: 2, Ayah: 255, Note: "  ayat kursi "}},
		{name: "surah out of range", data: NewBookmark{Surah: 115, Ayah: 1}, wantErr: true},
		{name: "ayah out of surah", data: NewBookmark{Surah: 1, Ayah: 8}, wantErr: true},
		{name: "zero", data: NewBookmark{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, "ayat kursi", tt.data.Note)
		})
	}

	lr := LastRead{Surah: 1, Ayah: 8}
	err := lr.Validate(validate)
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok)
	assert.Equal(t, "ayah", vErr.Fields[0].Field)
}

func tafsirServer(t *testing.T, hits *int32) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/112" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		time.Sleep(10 * time.Millisecond)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"message":"ok","data":{"nomor":112,"namaLatin":"Al-Ikhlas",` +
			`"tafsir":[{"ayat":1,"teks":"Katakanlah"},{"ayat":2,"teks":"Allah tempat bergantung"}]}}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTafsirClient(t *testing.T) {
	var hits int32
	srv := tafsirServer(t, &hits)
	client := NewTafsirClient(srv.URL+"/", time.Second, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tf, err := client.Surah(ctx, 112)
			assert.NoError(t, err)
			assert.Equal(t, "Al-Ikhlas", tf.Name)
		}()
	}
	wg.Wait()

	a, err := AyahTafsirOf(ctx, client, Position{112, 2})
	require.NoError(t, err)
	assert.Equal(t, "Allah tempat bergantung", a.Text)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	_, err = AyahTafsirOf(ctx, client, Position{112, 4})
	assert.Equal(t, ErrTafsirUnavailable, err)
	_, err = AyahTafsirOf(ctx, client, Position{112, 5})
	assert.Error(t, err)

	_, err = client.Surah(ctx, 1)
	assert.Equal(t, ErrTafsirUnavailable, err)
	_, err = client.Surah(ctx, 0)
	assert.Equal(t, ErrSurahNotFound, err)
}

func TestTafsirClient_CancelledCaller(t *testing.T) {
	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write([]byte(`{"code":200,"data":{"nomor":112,"namaLatin":"Al-Ikhlas","tafsir":[{"ayat":1,"teks":"Katakanlah"}]}}`))
	}))
	t.Cleanup(srv.Close)
	client := NewTafsirClient(srv.URL, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := client.Surah(ctx, 112)
		firstErr <- err
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&hits) == 1 }, time.Second, time.Millisecond)

	type result struct {
		tf  Tafsir
		err error
	}
	second := make(chan result, 1)
	go func() {
		tf, err := client.Surah(context.Background(), 112)
		second <- result{tf, err}
	}()

	cancel()
	err := <-firstErr
	require.Error(t, err)
	assert.Equal(t, ErrTafsirUnavailable, errors.Cause(err))

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Equal(t, "Al-Ikhlas", res.tf.Name)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}
