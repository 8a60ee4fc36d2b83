package view

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"indigo/internal/domain"
	"indigo/internal/models"

	"github.com/rs/zerolog"
)

// Controller owns the state of one menu view and turns commands into
// catalog writes. The catalog stays authoritative: local items only change
// when a snapshot arrives.
type Controller struct {
	catalog     domain.Catalog
	recommender domain.Recommender
	logger      *zerolog.Logger

	pin      string
	seed     []models.MenuItem
	now      func() time.Time
	onChange func()

	mu     sync.Mutex
	state  State
	seeded bool
	closed bool

	startOnce sync.Once
	closeOnce sync.Once
	sub       domain.Subscription
	done      chan struct{}
}

type Option func(*Controller)

// WithOnChange registers a callback fired after every state change. It runs
// outside the controller lock and may call State.
func WithOnChange(fn func()) Option {
	return func(c *Controller) { c.onChange = fn }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithPIN overrides the admin PIN.
func WithPIN(pin string) Option {
	return func(c *Controller) { c.pin = pin }
}

// WithSeed overrides the starter catalog written into an empty store.
func WithSeed(items []models.MenuItem) Option {
	return func(c *Controller) { c.seed = models.CloneItems(items) }
}

func NewController(catalog domain.Catalog, recommender domain.Recommender, logger *zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		catalog:     catalog,
		recommender: recommender,
		logger:      logger,
		pin:         models.AdminPIN,
		seed:        models.SeedMenu(),
		now:         time.Now,
		state:       initialState(),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a copy of the current view state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// update applies fn under the lock and notifies listeners.
func (c *Controller) update(fn func(s *State)) {
	c.mu.Lock()
	fn(&c.state)
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) changed() {
	if c.onChange != nil {
		c.onChange()
	}
}

// Start opens the catalog subscription and feeds every update into the
// controller until Close. Subsequent calls are no-ops.
func (c *Controller) Start(ctx context.Context) Outcome {
	out := ok(OpStart)
	c.startOnce.Do(func() {
		sub, err := c.catalog.Subscribe(ctx)
		if err != nil {
			c.FailSubscription(err)
			close(c.done)
			out = Outcome{Op: OpStart, Reason: ReasonUnavailable, Err: err}
			return
		}

		c.mu.Lock()
		c.sub = sub
		closed := c.closed
		c.mu.Unlock()
		if closed {
			_ = sub.Close()
		}

		go c.consume(ctx, sub)
	})
	return out
}

func (c *Controller) consume(ctx context.Context, sub domain.Subscription) {
	defer close(c.done)
	for update := range sub.Updates() {
		if update.Err != nil {
			c.FailSubscription(update.Err)
			continue
		}
		c.ReplaceSnapshot(ctx, update.Snapshot)
	}
}

// Done is closed once the subscription loop has exited.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Close releases the subscription exactly once. Snapshots arriving later
// are ignored.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		sub := c.sub
		c.mu.Unlock()

		if sub != nil {
			err = sub.Close()
		}
	})
	return err
}

// ReplaceSnapshot swaps the item list wholesale. The first empty snapshot
// that did not come from a cache seeds the store once.
func (c *Controller) ReplaceSnapshot(ctx context.Context, snapshot domain.Snapshot) Outcome {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return skipped(OpSnapshot, ReasonClosed)
	}
	c.state.Items = models.CloneItems(snapshot.Items)
	if c.state.Items == nil {
		c.state.Items = []models.MenuItem{}
	}
	needSeed := len(snapshot.Items) == 0 && !snapshot.FromCache && !c.seeded
	if needSeed {
		c.seeded = true
	} else {
		c.state.Loading = false
	}
	c.mu.Unlock()
	c.changed()

	if !needSeed {
		return ok(OpSnapshot)
	}

	err := c.catalog.SeedItems(ctx, c.seed)
	if err != nil {
		c.logger.Error().Err(err).Msg("Error seeding database")
	} else {
		c.logger.Info().Int("items", len(c.seed)).Msg("Database seeded successfully")
	}
	c.update(func(s *State) { s.Loading = false })

	if err != nil {
		return failed(OpSnapshot, err)
	}
	return ok(OpSnapshot)
}

// FailSubscription records a subscription failure: logged, loading cleared.
func (c *Controller) FailSubscription(err error) {
	c.logger.Error().Err(err).Msg("Error fetching menu")
	c.update(func(s *State) { s.Loading = false })
}

// ToggleAvailability flips the available flag of id as seen in the current
// snapshot. Admin mode only.
func (c *Controller) ToggleAvailability(ctx context.Context, id string) Outcome {
	c.mu.Lock()
	admin := c.state.AdminMode
	item, found := c.state.findItem(id)
	c.mu.Unlock()

	if !admin {
		return skipped(OpToggle, ReasonNotAdmin)
	}
	if !found {
		return skipped(OpToggle, ReasonNoTarget)
	}

	if err := c.catalog.UpdateAvailability(ctx, item.ID, !item.Available); err != nil {
		c.logger.Error().Err(err).Str("item_id", item.ID).Msg("Error updating availability")
		return failed(OpToggle, err)
	}
	return ok(OpToggle)
}

// OpenPinPad shows the PIN modal. In admin mode the header control exits
// instead, so this is a no-op there.
func (c *Controller) OpenPinPad() Outcome {
	c.mu.Lock()
	admin := c.state.AdminMode
	c.mu.Unlock()
	if admin {
		return skipped(OpOpenPinPad, ReasonNoTarget)
	}
	c.update(func(s *State) { s.ActiveAdminView = models.AdminViewPinPad })
	return ok(OpOpenPinPad)
}

func (c *Controller) CancelPinPad() Outcome {
	c.update(func(s *State) {
		s.ActiveAdminView = models.AdminViewNone
		s.PinInput = ""
	})
	return ok(OpCancelPinPad)
}

func (c *Controller) SetPinInput(value string) Outcome {
	c.update(func(s *State) { s.PinInput = value })
	return ok(OpUpdateDraft)
}

// SubmitPin compares the entered text to the admin PIN. The input is
// cleared either way; the modal closes only on a match.
func (c *Controller) SubmitPin() Outcome {
	var match bool
	c.update(func(s *State) {
		match = s.PinInput == c.pin
		s.PinInput = ""
		if match {
			s.AdminMode = true
			s.ActiveAdminView = models.AdminViewNone
		}
	})
	if !match {
		return skipped(OpSubmitPin, ReasonWrongPIN)
	}
	c.logger.Info().Msg("Admin mode enabled")
	return ok(OpSubmitPin)
}

// ExitAdmin leaves admin mode and closes every admin-only dialog.
func (c *Controller) ExitAdmin() Outcome {
	c.update(func(s *State) {
		s.AdminMode = false
		s.ActiveAdminView = models.AdminViewNone
		s.PinInput = ""
		s.EditingItem = nil
		s.AddingToCategory = ""
		s.ItemToDelete = nil
	})
	return ok(OpExitAdmin)
}

// BeginEdit opens the edit dialog with a draft copy of id.
func (c *Controller) BeginEdit(id string) Outcome {
	return c.selectItem(OpBeginEdit, id, func(s *State, item models.MenuItem) { s.EditingItem = &item })
}

// MarkForDeletion opens the delete confirmation for id.
func (c *Controller) MarkForDeletion(id string) Outcome {
	return c.selectItem(OpMarkForDelete, id, func(s *State, item models.MenuItem) { s.ItemToDelete = &item })
}

func (c *Controller) selectItem(op Op, id string, apply func(*State, models.MenuItem)) Outcome {
	c.mu.Lock()
	if !c.state.AdminMode {
		c.mu.Unlock()
		return skipped(op, ReasonNotAdmin)
	}
	item, found := c.state.findItem(id)
	if !found {
		c.mu.Unlock()
		return skipped(op, ReasonNoTarget)
	}
	apply(&c.state, item)
	c.mu.Unlock()
	c.changed()
	return ok(op)
}

// SetEditDraft replaces the editable fields of the draft.
func (c *Controller) SetEditDraft(name, price, description string) Outcome {
	var found bool
	c.update(func(s *State) {
		if s.EditingItem == nil {
			return
		}
		found = true
		s.EditingItem.Name = name
		s.EditingItem.Price = price
		s.EditingItem.Description = description
	})
	if !found {
		return skipped(OpUpdateDraft, ReasonNoTarget)
	}
	return ok(OpUpdateDraft)
}

func (c *Controller) CancelEdit() Outcome {
	c.update(func(s *State) { s.EditingItem = nil })
	return ok(OpCloseDialog)
}

// SaveEdit overwrites the whole record at the draft's id. On failure the
// dialog and draft stay as they were.
func (c *Controller) SaveEdit(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.state.EditingItem == nil {
		c.mu.Unlock()
		return skipped(OpSaveEdit, ReasonNoTarget)
	}
	item := *c.state.EditingItem
	c.mu.Unlock()

	if err := c.catalog.SetItem(ctx, item); err != nil {
		c.logger.Error().Err(err).Str("item_id", item.ID).Msg("Error saving item")
		return failed(OpSaveEdit, err)
	}

	c.update(func(s *State) {
		if s.EditingItem != nil && s.EditingItem.ID == item.ID {
			s.EditingItem = nil
		}
		s.ActiveAdminView = models.AdminViewNone
	})
	return ok(OpSaveEdit)
}

// BeginAdd opens the add dialog for category, pre-filling its default icon.
// Other draft fields are kept from the previous attempt.
func (c *Controller) BeginAdd(category models.CategoryKey) Outcome {
	c.mu.Lock()
	if !c.state.AdminMode {
		c.mu.Unlock()
		return skipped(OpBeginAdd, ReasonNotAdmin)
	}
	if !models.IsValidCategory(category) {
		c.mu.Unlock()
		return skipped(OpBeginAdd, ReasonNoTarget)
	}
	c.state.NewItem.Category = category
	c.state.NewItem.Image = models.DefaultIcon(category)
	c.state.AddingToCategory = category
	c.mu.Unlock()
	c.changed()
	return ok(OpBeginAdd)
}

// SetNewItemDraft replaces the typed fields of the add draft; its category
// is fixed by BeginAdd.
func (c *Controller) SetNewItemDraft(name, price, description, image string) Outcome {
	c.update(func(s *State) {
		s.NewItem.Name = name
		s.NewItem.Price = price
		s.NewItem.Description = description
		s.NewItem.Image = image
	})
	return ok(OpUpdateDraft)
}

func (c *Controller) CancelAdd() Outcome {
	c.update(func(s *State) { s.AddingToCategory = "" })
	return ok(OpCloseDialog)
}

// AddNewItem writes the draft as a new available record. Name, price and a
// known category are required.
func (c *Controller) AddNewItem(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.state.AddingToCategory == "" {
		c.mu.Unlock()
		return skipped(OpAddItem, ReasonNoTarget)
	}
	draft := c.state.NewItem
	c.mu.Unlock()

	if strings.TrimSpace(draft.Name) == "" || strings.TrimSpace(draft.Price) == "" || !models.IsValidCategory(draft.Category) {
		return skipped(OpAddItem, ReasonMissingFields)
	}

	item := models.MenuItem{
		ID:          fmt.Sprintf("%s%d", models.NewItemIDPrefix, c.now().UnixMilli()),
		Name:        draft.Name,
		Price:       draft.Price,
		Category:    draft.Category,
		Description: draft.Description,
		Available:   true,
		Image:       draft.Image,
	}

	if err := c.catalog.SetItem(ctx, item); err != nil {
		c.logger.Error().Err(err).Str("item_id", item.ID).Msg("Error adding item")
		return failed(OpAddItem, err)
	}

	c.update(func(s *State) {
		s.AddingToCategory = ""
		s.ActiveAdminView = models.AdminViewNone
		s.NewItem = models.EmptyNewItem()
	})
	return ok(OpAddItem)
}

func (c *Controller) CancelDelete() Outcome {
	c.update(func(s *State) { s.ItemToDelete = nil })
	return ok(OpCloseDialog)
}

// ConfirmDelete removes the item pending deletion.
func (c *Controller) ConfirmDelete(ctx context.Context) Outcome {
	c.mu.Lock()
	if c.state.ItemToDelete == nil {
		c.mu.Unlock()
		return skipped(OpConfirmDelete, ReasonNoTarget)
	}
	id := c.state.ItemToDelete.ID
	c.mu.Unlock()

	if err := c.catalog.DeleteItem(ctx, id); err != nil {
		c.logger.Error().Err(err).Str("item_id", id).Msg("Error deleting item")
		return failed(OpConfirmDelete, err)
	}

	c.update(func(s *State) {
		if s.ItemToDelete != nil && s.ItemToDelete.ID == id {
			s.ItemToDelete = nil
		}
		s.ActiveAdminView = models.AdminViewNone
	})
	return ok(OpConfirmDelete)
}

func (c *Controller) OpenAssistant() Outcome {
	c.update(func(s *State) { s.AIChatOpen = true })
	return ok(OpOpenAssistant)
}

// CloseAssistant hides the dialog; mood and last answer are kept.
func (c *Controller) CloseAssistant() Outcome {
	c.update(func(s *State) { s.AIChatOpen = false })
	return ok(OpCloseAssistant)
}

func (c *Controller) SetMood(mood string) Outcome {
	c.update(func(s *State) { s.AIMood = mood })
	return ok(OpUpdateDraft)
}

// AskAI asks the recommender about the current mood and waits for the answer.
func (c *Controller) AskAI(ctx context.Context) Outcome {
	mood, items, out := c.startAsk()
	if !out.OK() {
		return out
	}
	c.finishAsk(ctx, mood, items)
	return out
}

// AskAIAsync sets the loading flag before returning and completes the
// request in the background.
func (c *Controller) AskAIAsync(ctx context.Context) Outcome {
	mood, items, out := c.startAsk()
	if !out.OK() {
		return out
	}
	go c.finishAsk(ctx, mood, items)
	return out
}

func (c *Controller) startAsk() (string, []models.MenuItem, Outcome) {
	c.mu.Lock()
	mood := c.state.AIMood
	switch {
	case strings.TrimSpace(mood) == "":
		c.mu.Unlock()
		return "", nil, skipped(OpAskAI, ReasonEmptyMood)
	case c.state.AILoading:
		c.mu.Unlock()
		return "", nil, skipped(OpAskAI, ReasonBusy)
	}
	c.state.AILoading = true
	items := models.AvailableOnly(c.state.Items)
	c.mu.Unlock()
	c.changed()
	return mood, items, ok(OpAskAI)
}

func (c *Controller) finishAsk(ctx context.Context, mood string, items []models.MenuItem) {
	text := c.recommender.Recommend(ctx, mood, items)
	c.update(func(s *State) {
		s.AIResponse = text
		s.AILoading = false
	})
}
