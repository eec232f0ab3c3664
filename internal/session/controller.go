// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/chatdesk/internal/attachment"
	"github.com/jeranaias/chatdesk/internal/gateway"
	"github.com/jeranaias/chatdesk/internal/model"
)

// =============================================================================
// GATEWAY
// =============================================================================

// Gateway is the subset of the backend client the controller uses.
// *gateway.Client satisfies it.
type Gateway interface {
	ListModels(ctx context.Context) ([]model.ModelDescriptor, error)
	ListConversations(ctx context.Context) ([]model.ConversationSummary, error)
	GetConversation(ctx context.Context, id string) (*model.ConversationDetail, error)
	DeleteConversation(ctx context.Context, id string) (*model.Ack, error)
	SendMessage(ctx context.Context, conversationID, text, provider, modelName string, fileContent *string) (*model.ChatResponse, error)
	SendStandaloneMessage(ctx context.Context, text, provider, modelName string, fileContent *string) (*model.ChatResponse, error)
	UploadFile(ctx context.Context, r io.Reader, filename string) (*model.UploadResult, error)
}

var _ Gateway = (*gateway.Client)(nil)

// =============================================================================
// CONTROLLER
// =============================================================================

// Options configures a Controller.
type Options struct {
	// PreferredModel is a "provider/name" key selected after the model list
	// loads, when present in it. Otherwise the default tie-break applies.
	PreferredModel string

	// Logger (default: slog.Default())
	Logger *slog.Logger
}

// Controller owns the session state and sequences backend calls.
type Controller struct {
	gw      Gateway
	staging *attachment.Staging
	logger  *slog.Logger
	prefer  string

	mu    sync.Mutex
	state State

	// epoch increases whenever the active conversation changes
	epoch uint64

	subMu  sync.Mutex
	subs   map[int]func(State)
	nextID int
}

// NewController creates a controller backed by gw.
func NewController(gw Gateway, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		gw:      gw,
		staging: attachment.NewStaging(),
		logger:  logger.With("component", "session"),
		prefer:  opts.PreferredModel,
		subs:    make(map[int]func(State)),
	}
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	s := c.state.clone()
	if staged, ok := c.staging.Current(); ok {
		s.StagedAttachment = staged
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every mutation.
// Snapshots may arrive from several goroutines; compare Version to drop
// older ones. The returned function unsubscribes.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// update applies fn under the lock and publishes the resulting snapshot.
func (c *Controller) update(fn func(s *State)) State {
	c.mu.Lock()
	fn(&c.state)
	c.state.Version++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return snap
}

func (c *Controller) publish(snap State) {
	c.subMu.Lock()
	subs := make([]func(State), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// Initialize loads the conversation list and the model list concurrently.
// Each result is applied on its own; one failing does not discard the
// other. When no model is selected yet, the configured preference wins,
// then "gpt-3.5-turbo", then the first model.
func (c *Controller) Initialize(ctx context.Context) error {
	c.update(func(s *State) {
		s.ConversationsLoading = true
		s.ModelsLoading = true
	})

	var listErr, modelsErr error
	var g errgroup.Group
	g.Go(func() error {
		var convs []model.ConversationSummary
		convs, listErr = c.gw.ListConversations(ctx)
		c.applyConversations(convs, listErr)
		return nil
	})
	g.Go(func() error {
		var models []model.ModelDescriptor
		models, modelsErr = c.gw.ListModels(ctx)
		c.applyModels(models, modelsErr)
		return nil
	})
	_ = g.Wait()
	return errors.Join(listErr, modelsErr)
}

func (c *Controller) applyConversations(convs []model.ConversationSummary, err error) {
	c.update(func(s *State) {
		s.ConversationsLoading = false
		if err != nil {
			s.LastError = gateway.UserMessage(err, msgLoadConversations)
			return
		}
		s.Conversations = convs
	})
	if err != nil {
		c.logger.Warn("failed to load conversations", "error", err)
	}
}

func (c *Controller) applyModels(models []model.ModelDescriptor, err error) {
	c.update(func(s *State) {
		s.ModelsLoading = false
		if err != nil {
			s.LastError = gateway.UserMessage(err, msgLoadModels)
			return
		}
		s.Models = models
		if s.SelectedModel != nil {
			return
		}
		if c.prefer != "" {
			if provider, name, perr := model.ParseModelKey(c.prefer); perr == nil {
				if m, ok := model.FindModel(models, provider, name); ok {
					s.SelectedModel = &m
					return
				}
			}
		}
		if m, ok := model.PickDefault(models); ok {
			s.SelectedModel = &m
		}
	})
	if err != nil {
		c.logger.Warn("failed to load models", "error", err)
	}
}

// =============================================================================
// MODEL SELECTION
// =============================================================================

// SelectModel picks a model from the loaded list.
func (c *Controller) SelectModel(provider, name string) error {
	var found bool
	c.update(func(s *State) {
		m, ok := model.FindModel(s.Models, provider, name)
		if !ok {
			s.LastError = "Unknown model: " + provider + "/" + name
			return
		}
		found = true
		s.SelectedModel = &m
	})
	if !found {
		return ErrUnknownModel
	}
	return nil
}

// =============================================================================
// CONVERSATION NAVIGATION
// =============================================================================

// SelectConversation makes id the active conversation and loads its
// messages. The previous thread and any staged attachment are cleared
// before the fetch starts. Blocks until the fetch resolves; a result that
// arrives after a newer switch is dropped.
func (c *Controller) SelectConversation(ctx context.Context, id string) error {
	var epoch uint64
	c.update(func(s *State) {
		c.epoch++
		epoch = c.epoch
		s.ActiveConversationID = id
		s.ActiveConversation = nil
		s.DetailLoading = true
		c.staging.Clear()
	})

	detail, err := c.gw.GetConversation(ctx, id)
	return c.applyDetail(epoch, id, detail, err)
}

// applyDetail installs a fetched thread if the selection has not moved.
func (c *Controller) applyDetail(epoch uint64, id string, detail *model.ConversationDetail, err error) error {
	var stale bool
	c.mu.Lock()
	stale = c.epoch != epoch || c.state.ActiveConversationID != id
	c.mu.Unlock()
	if stale {
		c.logger.Debug("dropping stale conversation detail", "id", id, "error", err)
		return nil
	}

	c.update(func(s *State) {
		// Re-check: the selection may have moved between the two locks.
		if c.epoch != epoch || s.ActiveConversationID != id {
			stale = true
			return
		}
		s.DetailLoading = false
		if err != nil {
			s.LastError = gateway.UserMessage(err, msgLoadConversation)
			return
		}
		if detail.ID == "" {
			detail.ID = id
		}
		s.ActiveConversation = detail
	})
	if stale {
		c.logger.Debug("dropping stale conversation detail", "id", id)
		return nil
	}
	if err != nil {
		c.logger.Warn("failed to load conversation", "id", id, "error", err)
	}
	return err
}

// NewChat clears the active conversation. The next send creates one.
func (c *Controller) NewChat() {
	c.update(func(s *State) {
		c.clearActiveLocked(s)
	})
}

func (c *Controller) clearActiveLocked(s *State) {
	c.epoch++
	s.ActiveConversationID = ""
	s.ActiveConversation = nil
	s.DetailLoading = false
	c.staging.Clear()
}

// DeleteConversation deletes id on the backend and reloads the list. If
// id was active the session moves to a new chat.
func (c *Controller) DeleteConversation(ctx context.Context, id string) error {
	if _, err := c.gw.DeleteConversation(ctx, id); err != nil {
		c.update(func(s *State) {
			s.LastError = gateway.UserMessage(err, msgDelete)
		})
		c.logger.Warn("failed to delete conversation", "id", id, "error", err)
		return err
	}

	c.update(func(s *State) {
		if s.ActiveConversationID == id {
			c.clearActiveLocked(s)
		}
	})
	c.logger.Info("conversation deleted", "id", id)
	return c.Reload(ctx)
}

// Reload re-fetches the conversation list and the active thread.
func (c *Controller) Reload(ctx context.Context) error {
	c.mu.Lock()
	epoch := c.epoch
	id := c.state.ActiveConversationID
	c.mu.Unlock()
	return c.refresh(ctx, epoch, id)
}

// refresh fetches the list and, when id is set, its detail concurrently,
// then applies each result independently.
func (c *Controller) refresh(ctx context.Context, epoch uint64, id string) error {
	c.update(func(s *State) {
		s.ConversationsLoading = true
		if id != "" && s.ActiveConversation == nil {
			s.DetailLoading = true
		}
	})

	var (
		convs     []model.ConversationSummary
		detail    *model.ConversationDetail
		listErr   error
		detailErr error
	)
	var g errgroup.Group
	g.Go(func() error {
		convs, listErr = c.gw.ListConversations(ctx)
		return nil
	})
	if id != "" {
		g.Go(func() error {
			detail, detailErr = c.gw.GetConversation(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	c.applyConversations(convs, listErr)
	if id == "" {
		return listErr
	}
	detailErr = c.applyDetail(epoch, id, detail, detailErr)
	return errors.Join(listErr, detailErr)
}

// DismissError clears the last error.
func (c *Controller) DismissError() {
	c.update(func(s *State) {
		s.LastError = ""
	})
}
