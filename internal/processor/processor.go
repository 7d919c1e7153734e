package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"codeberg.org/snonux/cardfactory/internal"
	"codeberg.org/snonux/cardfactory/internal/anki"
	"codeberg.org/snonux/cardfactory/internal/archive"
	"codeberg.org/snonux/cardfactory/internal/batch"
	"codeberg.org/snonux/cardfactory/internal/card"
	"codeberg.org/snonux/cardfactory/internal/deck"
	"codeberg.org/snonux/cardfactory/internal/layout"
	"codeberg.org/snonux/cardfactory/internal/logging"
	"codeberg.org/snonux/cardfactory/internal/pdf"
	"codeberg.org/snonux/cardfactory/internal/sampler"
	"codeberg.org/snonux/cardfactory/internal/storage"
	"codeberg.org/snonux/cardfactory/internal/wordbank"
)

var (
	// ErrEmptyDeck is returned when exporting or saving a deck without cards
	ErrEmptyDeck = errors.New("no cards to export")
	// ErrNotArchivable is returned by Archive for the in-memory backend
	ErrNotArchivable = errors.New("storage backend has nothing on disk to archive")
)

// Option configures a Session
type Option func(*Session)

// WithKV uses kv instead of opening the configured backend. The session
// does not close it.
func WithKV(kv storage.KV) Option {
	return func(s *Session) {
		s.kv = kv
		s.ownsKV = false
	}
}

// WithBank uses bank instead of loading the configured word bank
func WithBank(bank *wordbank.Bank) Option {
	return func(s *Session) {
		s.bank = bank
	}
}

// WithRand sets the random source for sampling and regeneration
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		s.rng = r
	}
}

// WithIDFunc sets the generator for new card IDs
func WithIDFunc(f func() string) Option {
	return func(s *Session) {
		s.newID = f
	}
}

// WithNotifier sets the receiver of user-facing messages
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithClock sets the time source used for archive names
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is the active editing session. It is safe for concurrent use.
type Session struct {
	mu       sync.Mutex
	settings Settings

	kv       storage.KV
	ownsKV   bool
	sets     *storage.SetStore
	snapshot *storage.SessionStore

	bank     *wordbank.Bank
	deck     *deck.Deck
	sampler  *sampler.Sampler
	renderer *pdf.Renderer

	rng      *rand.Rand
	newID    func() string
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

// Open creates a session and restores the working deck of the previous one
func Open(ctx context.Context, settings Settings, opts ...Option) (*Session, error) {
	if err := settings.Layout.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		settings: settings,
		ownsKV:   true,
		newID:    internal.GenerateCardID,
		notifier: discardNotifier{},
		logger:   logging.Discard(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		seed := uint64(time.Now().UnixNano())
		s.rng = rand.New(rand.NewPCG(seed, seed>>7|1))
	}

	if s.bank == nil {
		bank, err := loadBank(settings.WordBankPath)
		if err != nil {
			return nil, err
		}
		s.bank = bank
	}

	if s.kv == nil {
		kv, err := storage.Open(settings.Storage, s.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		s.kv = kv
	}
	s.sets = storage.NewSetStore(s.kv)
	s.snapshot = storage.NewSessionStore(s.kv)

	cards, err := s.snapshot.Load(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.deck = deck.New(cards...)
	s.deck.SetIDFunc(s.newID)

	s.sampler = sampler.New(s.bank, sampler.WithRand(s.rng), sampler.WithIDFunc(s.newID))
	s.renderer = pdf.NewRenderer(pdf.DefaultOptions())

	s.logger.Debug("session opened", "cards", s.deck.Len(), "bank_size", s.bank.Size())
	return s, nil
}

func loadBank(path string) (*wordbank.Bank, error) {
	if path == "" {
		return wordbank.Default(), nil
	}
	bank, err := wordbank.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load word bank: %w", err)
	}
	return bank, nil
}

// Close releases the storage backend when the session opened it
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ownsKV && s.kv != nil {
		err := s.kv.Close()
		s.kv = nil
		return err
	}
	return nil
}

// Settings returns the session settings
func (s *Session) Settings() Settings {
	return s.settings
}

// Bank returns the word bank in use
func (s *Session) Bank() *wordbank.Bank {
	return s.bank
}

// Cards returns a copy of the working deck
func (s *Session) Cards() []card.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Cards()
}

// Len returns the number of cards in the working deck
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Len()
}

// Get returns the card with the given ID
func (s *Session) Get(id string) (card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deck.Get(id)
}

// Stats returns the number of cards per category
func (s *Session) Stats() map[card.Category]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return card.CountByCategory(s.deck.Cards())
}

// Pages returns the working deck laid out for printing
func (s *Session) Pages() []layout.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return layout.Paginate(s.deck.Cards(), s.settings.Layout)
}

// persist writes the working deck to the session store. Callers hold mu.
func (s *Session) persist(ctx context.Context) error {
	if err := s.snapshot.Save(ctx, s.deck.Cards()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Add appends a hand-written card. Category defaults to noun and level
// to medium.
func (s *Session) Add(ctx context.Context, c card.Card) (card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.Word = strings.TrimSpace(c.Word)
	c.Definition = strings.TrimSpace(c.Definition)
	c.Example = strings.TrimSpace(c.Example)
	if c.Category == "" {
		c.Category = card.Noun
	}
	if c.Level == "" {
		c.Level = card.LevelMedium
	}

	stored, err := s.deck.Append(c)
	if err != nil {
		return card.Card{}, err
	}
	if err := s.persist(ctx); err != nil {
		s.deck.Remove(stored.ID)
		return card.Card{}, err
	}

	s.logger.Info("card added", "id", stored.ID, "word", stored.Word)
	s.notifier.Notify(fmt.Sprintf("Added %q (%s)", stored.Word, stored.Category))
	return stored, nil
}

// Edit applies a partial update to one card
func (s *Session) Edit(ctx context.Context, id string, p card.Patch) (card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.deck.Get(id)
	if err != nil {
		return card.Card{}, err
	}
	updated, err := s.deck.Update(id, p)
	if err != nil {
		return card.Card{}, err
	}
	if err := s.persist(ctx); err != nil {
		s.deck.Update(id, restore(before))
		return card.Card{}, err
	}

	s.logger.Info("card updated", "id", id)
	s.notifier.Notify("Card updated! Your changes have been saved.")
	return updated, nil
}

// restore builds a patch that sets every field back to c
func restore(c card.Card) card.Patch {
	return card.Patch{
		Word:       &c.Word,
		Definition: &c.Definition,
		Example:    &c.Example,
		Category:   &c.Category,
		Level:      &c.Level,
	}
}

// Remove deletes a card. Removing an unknown ID is a no-op.
func (s *Session) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.deck.Cards()
	s.deck.Remove(id)
	if len(before) == s.deck.Len() {
		return nil
	}
	if err := s.persist(ctx); err != nil {
		s.deck.ReplaceAll(before)
		return err
	}

	s.logger.Info("card removed", "id", id)
	return nil
}

// Regenerate replaces a card with another bank word of the same category
func (s *Session) Regenerate(ctx context.Context, id string) (card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, err := s.deck.Get(id)
	if err != nil {
		return card.Card{}, err
	}
	replacement, err := s.deck.Regenerate(id, s.bank, s.rng)
	if err != nil {
		return card.Card{}, err
	}
	if err := s.persist(ctx); err != nil {
		s.deck.Update(id, restore(before))
		return card.Card{}, err
	}

	s.logger.Info("card regenerated", "id", id, "from", before.Word, "to", replacement.Word)
	s.notifier.Notify(fmt.Sprintf("Card regenerated! Generated new %s: %s", replacement.Category, replacement.Word))
	return replacement, nil
}

// Clear empties the working deck
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deck.ReplaceAll(nil)
	if err := s.snapshot.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Generate samples a new working deck from the word bank, replacing the
// current one. With avoidDuplicates, words of every saved set are skipped.
// Categories with too few words are filled as far as possible and
// reported in the result.
func (s *Session) Generate(ctx context.Context, counts map[card.Category]int, avoidDuplicates bool) (sampler.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req := sampler.Request{
		Counts:          counts,
		AvoidDuplicates: avoidDuplicates,
		AcceptFewer:     true,
		Level:           card.LevelISEE,
	}
	if avoidDuplicates {
		words, err := s.sets.Words(ctx)
		if err != nil {
			return sampler.Result{}, err
		}
		req.Exclude = words
	}

	result, err := s.sampler.Sample(req)
	if err != nil {
		return sampler.Result{}, err
	}

	before := s.deck.Cards()
	s.deck.ReplaceAll(result.Cards)
	if err := s.persist(ctx); err != nil {
		s.deck.ReplaceAll(before)
		return sampler.Result{}, err
	}

	for _, short := range result.Shortfalls {
		s.notifier.Notify(fmt.Sprintf("Only %d of %d %s available", short.Available, short.Requested, short.Category.Plural()))
	}
	s.logger.Info("deck generated", "cards", len(result.Cards), "excluded", len(req.Exclude))
	s.notifier.Notify(fmt.Sprintf("Flashcards generated! Created %d flashcards for you.", len(result.Cards)))
	return result, nil
}

// ImportResult summarizes a batch import
type ImportResult struct {
	Added   []card.Card
	Skipped []string // bare words not found in the word bank
}

// Import appends the cards of a batch file. Bare words are completed from
// the word bank or skipped when the bank does not know them. Nothing is
// added when any line is invalid.
func (s *Session) Import(ctx context.Context, path string) (ImportResult, error) {
	entries, err := batch.ReadBatchFile(path)
	if err != nil {
		return ImportResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var result ImportResult
	before := s.deck.Cards()
	for _, entry := range entries {
		c := entry.ToCard()
		if entry.NeedsLookup {
			found, ok := s.bank.Lookup(entry.Word)
			if !ok {
				result.Skipped = append(result.Skipped, entry.Word)
				continue
			}
			c = found.ToCard("", entry.Level)
		}

		stored, err := s.deck.Append(c)
		if err != nil {
			s.deck.ReplaceAll(before)
			return ImportResult{}, fmt.Errorf("line %d: %w", entry.Line, err)
		}
		result.Added = append(result.Added, stored)
	}

	if err := s.persist(ctx); err != nil {
		s.deck.ReplaceAll(before)
		return ImportResult{}, err
	}

	for _, word := range result.Skipped {
		s.notifier.Notify(fmt.Sprintf("Skipped %q: not in the word bank", word))
	}
	s.logger.Info("batch imported", "path", path, "added", len(result.Added), "skipped", len(result.Skipped))
	s.notifier.Notify(fmt.Sprintf("Imported %d cards from %s", len(result.Added), path))
	return result, nil
}

// SaveSet stores a snapshot of the working deck under name
func (s *Session) SaveSet(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sets.Save(ctx, name, s.deck.Cards()); err != nil {
		return err
	}

	name = strings.TrimSpace(name)
	s.logger.Info("set saved", "name", name, "cards", s.deck.Len())
	s.notifier.Notify(fmt.Sprintf("Set saved! %q has been saved to your collection.", name))
	return nil
}

// ListSets returns every saved set
func (s *Session) ListSets(ctx context.Context) ([]storage.SavedSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets.List(ctx)
}

// LoadSet replaces the working deck with a copy of a saved set
func (s *Session) LoadSet(ctx context.Context, name string) ([]card.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cards, err := s.sets.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	before := s.deck.Cards()
	s.deck.ReplaceAll(cards)
	if err := s.persist(ctx); err != nil {
		s.deck.ReplaceAll(before)
		return nil, err
	}

	s.logger.Info("set loaded", "name", name, "cards", len(cards))
	s.notifier.Notify(fmt.Sprintf("Set loaded! Loaded %q with %d cards.", name, len(cards)))
	return s.deck.Cards(), nil
}

// DeleteSet removes every saved set with the given name
func (s *Session) DeleteSet(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sets.Delete(ctx, name); err != nil {
		return err
	}

	s.logger.Info("set deleted", "name", name)
	s.notifier.Notify(fmt.Sprintf("Set deleted! %q has been removed.", name))
	return nil
}

// ExportPDF writes the double-sided PDF to the configured export path and
// returns that path
func (s *Session) ExportPDF(ctx context.Context) (string, error) {
	return s.ExportPDFTo(ctx, s.settings.ExportPath())
}

// ExportPDFTo writes the double-sided PDF to path
func (s *Session) ExportPDFTo(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deck.Len() == 0 {
		return "", ErrEmptyDeck
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	pages := layout.Paginate(s.deck.Cards(), s.settings.Layout)
	if err := s.renderer.Export(path, pages); err != nil {
		s.logger.Error("pdf export failed", "path", path, "error", err)
		return "", err
	}

	s.logger.Info("pdf exported", "path", path, "cards", s.deck.Len(), "pages", len(pages))
	s.notifier.Notify("PDF exported! Your flashcards have been exported as a PDF ready for double-sided printing.")
	return path, nil
}

// ExportCSV writes an Anki import CSV of the working deck
func (s *Session) ExportCSV(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deck.Len() == 0 {
		return ErrEmptyDeck
	}

	gen := anki.NewGenerator(&anki.GeneratorOptions{OutputPath: path, IncludeHeaders: true})
	gen.AddCards(s.deck.Cards()...)
	if err := gen.GenerateCSV(); err != nil {
		return err
	}

	s.notifier.Notify(fmt.Sprintf("Anki CSV written to %s", path))
	return nil
}

// ExportAPKG writes an Anki package of the working deck
func (s *Session) ExportAPKG(path, deckName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deck.Len() == 0 {
		return ErrEmptyDeck
	}

	gen := anki.NewGenerator(nil)
	gen.AddCards(s.deck.Cards()...)
	if err := gen.GenerateAPKG(path, deckName); err != nil {
		return err
	}

	s.notifier.Notify(fmt.Sprintf("Anki package written to %s", path))
	return nil
}

// Archive moves the persisted state aside and continues with an empty
// store and an empty deck. It returns the archive location.
func (s *Session) Archive(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.settings.Storage
	if cfg.Backend == storage.BackendMemory || !s.ownsKV {
		return "", ErrNotArchivable
	}

	if err := s.kv.Close(); err != nil {
		return "", fmt.Errorf("failed to close storage: %w", err)
	}
	archived, archiveErr := archive.ArchiveState(cfg.Path, s.now())

	// Reopen either way so the session stays usable
	kv, err := storage.Open(cfg, s.logger)
	if err != nil {
		s.kv = nil
		return "", errors.Join(archiveErr, fmt.Errorf("failed to reopen storage: %w", err))
	}
	s.kv = kv
	s.sets = storage.NewSetStore(kv)
	s.snapshot = storage.NewSessionStore(kv)
	if archiveErr != nil {
		return "", archiveErr
	}

	s.deck.ReplaceAll(nil)
	s.logger.Info("state archived", "path", archived)
	s.notifier.Notify(fmt.Sprintf("State archived to %s", archived))
	return archived, nil
}
