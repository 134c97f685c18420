// Package control implements the Control API (spec.md §4.5): the four
// operations invoked from the UI thread that mutate the voice list,
// the sustain flag, or re-populate the cache. It is the single handle
// (spec.md §9 "global process state") that owns every process-wide
// singleton and hands out only the pieces the audio callback needs.
package control

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ColonelBlimp/cwdecoder/internal/appstate"
	"github.com/ColonelBlimp/cwdecoder/internal/audio"
	"github.com/ColonelBlimp/cwdecoder/internal/buffer"
	"github.com/ColonelBlimp/cwdecoder/internal/cache"
	"github.com/ColonelBlimp/cwdecoder/internal/decoder"
	"github.com/ColonelBlimp/cwdecoder/internal/descriptor"
	"github.com/ColonelBlimp/cwdecoder/internal/release"
	"github.com/ColonelBlimp/cwdecoder/internal/voice"
)

const descriptorFileName = "instrument.json"

// Control wires the engine, cache, release registry, and persisted app
// state together behind the four operations the event bridge calls.
type Control struct {
	engine          *audio.Engine
	cache           *cache.Cache
	releases        *release.Registry
	state           *appstate.Store
	instrumentsRoot string
	log             *log.Logger

	mu              sync.RWMutex
	currentDesc     *descriptor.Descriptor
	currentFolder   string

	loadMu  sync.Mutex
	loading bool
}

// New constructs a Control bound to an already-open engine.
func New(engine *audio.Engine, releases *release.Registry, state *appstate.Store, instrumentsRoot string, logger *log.Logger) *Control {
	return &Control{
		engine:          engine,
		cache:           cache.New(),
		releases:        releases,
		state:           state,
		instrumentsRoot: instrumentsRoot,
		log:             logger,
	}
}

// PlayNote implements spec.md §4.5 play_note.
func (c *Control) PlayNote(midi uint8, velocity int, layerName string) error {
	c.mu.RLock()
	desc := c.currentDesc
	c.mu.RUnlock()

	if desc == nil {
		return ErrNoInstrument
	}

	key, ok := desc.Key(midi)
	if !ok {
		return &NoteNotFoundError{MIDI: midi}
	}

	layerIndex := 0
	if layerName != "" {
		upper := strings.ToUpper(layerName)
		for i, s := range key.Samples {
			if strings.ToUpper(s.Layer) == upper {
				layerIndex = i
				break
			}
		}
	}

	buf, ok := c.cache.Get(cache.Key{MIDI: midi, Layer: layerIndex})
	if !ok {
		return &NotCachedError{MIDI: midi, Layer: layerIndex}
	}

	recorded, ok := descriptor.ParseNoteName(key.Pitch)
	if !ok {
		recorded = key.MIDI
	}
	pitchRatio := voice.PitchRatioFor(midi, recorded)

	c.engine.PlayNote(voice.New(buf, midi, pitchRatio, velocity))
	return nil
}

// StopNote implements spec.md §4.5 stop_note.
func (c *Control) StopNote(midi uint8) {
	c.engine.StopNote(midi)
}

// SetSustain implements spec.md §4.5 set_sustain.
func (c *Control) SetSustain(active bool) {
	c.engine.SetSustain(active)
}

// CurrentInstrument returns the summary of the currently loaded
// instrument, or false if none has loaded successfully yet (spec.md
// §4.7 get_instrument_info).
func (c *Control) CurrentInstrument() (Summary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.currentDesc == nil {
		return Summary{}, false
	}
	return summarize(c.currentFolder, c.currentDesc), true
}

// AvailableInstruments walks the instruments root and returns a
// summary for every folder whose descriptor parses, skipping (and
// logging) folders that don't (spec.md §4.7, SPEC_FULL.md §5).
func (c *Control) AvailableInstruments() []Summary {
	entries, err := os.ReadDir(c.instrumentsRoot)
	if err != nil {
		c.log.Warn("read instruments root", "err", err)
		return nil
	}

	var summaries []Summary
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		folder := e.Name()
		data, err := os.ReadFile(filepath.Join(c.instrumentsRoot, folder, descriptorFileName))
		if err != nil {
			continue
		}
		desc, err := descriptor.Parse(data)
		if err != nil {
			c.log.Warn("skip unparseable instrument", "folder", folder, "err", err)
			continue
		}
		summaries = append(summaries, summarize(folder, desc))
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Folder < summaries[j].Folder })
	return summaries
}

// AppState reports the persisted last-instrument record (spec.md §4.7
// get_app_state).
func (c *Control) AppState() (appstate.State, error) {
	return c.state.Load()
}

// ClearLastInstrument implements spec.md §4.7 clear_last_instrument.
func (c *Control) ClearLastInstrument() error {
	return c.state.Clear()
}

// LoadInstrument implements spec.md §4.3. onProgress is called
// synchronously on the calling goroutine for every progress event;
// callers that want this off the control thread should invoke
// LoadInstrument from their own worker goroutine.
func (c *Control) LoadInstrument(folder string, onProgress func(Progress)) error {
	c.loadMu.Lock()
	if c.loading {
		c.loadMu.Unlock()
		return ErrLoadInProgress
	}
	c.loading = true
	c.loadMu.Unlock()
	defer func() {
		c.loadMu.Lock()
		c.loading = false
		c.loadMu.Unlock()
	}()

	if onProgress == nil {
		onProgress = func(Progress) {}
	}

	folderPath := filepath.Join(c.instrumentsRoot, folder)
	data, err := os.ReadFile(filepath.Join(folderPath, descriptorFileName))
	if err != nil {
		ierr := &InstrumentError{Reason: fmt.Sprintf("read descriptor: %v", err)}
		onProgress(progressError(ierr.Error()))
		return ierr
	}

	desc, err := descriptor.Parse(data)
	if err != nil {
		ierr := &InstrumentError{Reason: fmt.Sprintf("parse descriptor: %v", err)}
		onProgress(progressError(ierr.Error()))
		return ierr
	}

	midis := desc.Keys()
	total := 0
	for _, m := range midis {
		key, _ := desc.Key(m)
		total += len(key.Samples)
	}

	type slot struct {
		key cache.Key
		buf *buffer.Buffer
	}
	slots := make([]slot, 0, total)
	dedup := make(map[string]*buffer.Buffer)

	done := 0
	lastPct := -1
	for _, m := range midis {
		key, _ := desc.Key(m)
		for layerIndex, sample := range key.Samples {
			path := filepath.Join(folderPath, sample.Path)

			buf, ok := dedup[normalizePath(path)]
			if !ok {
				decoded, err := decoder.Decode(path)
				if err != nil {
					ierr := &InstrumentError{Reason: err.Error()}
					onProgress(progressError(ierr.Error()))
					return ierr
				}
				buf = decoded
				dedup[normalizePath(path)] = buf
			}

			slots = append(slots, slot{key: cache.Key{MIDI: m, Layer: layerIndex}, buf: buf})

			done++
			p := progressLoading(done, total)
			if p.Progress != lastPct {
				lastPct = p.Progress
				onProgress(p)
			}
		}
	}

	fast, slow := release.FromDescriptorSettings(desc.Float)

	c.cache.Clear()
	for _, s := range slots {
		c.cache.Insert(s.key, s.buf)
	}
	c.releases.Set(fast, slow)

	c.mu.Lock()
	c.currentDesc = desc
	c.currentFolder = folder
	c.mu.Unlock()

	if err := c.state.SetLastInstrument(folder); err != nil {
		c.log.Warn("persist last instrument", "err", err)
	}

	onProgress(progressDone(total))
	return nil
}

func normalizePath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return strings.ToLower(path)
	}
	return strings.ToLower(abs)
}
