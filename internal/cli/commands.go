// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// commands.go - One-shot commands: models, conversations, show, delete,
// upload, health, export, config and version.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/jeranaias/chatdesk/internal/attachment"
	"github.com/jeranaias/chatdesk/internal/config"
	"github.com/jeranaias/chatdesk/internal/export"
	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/util"
)

// uploadPreviewLen caps the extracted-text preview printed by upload.
const uploadPreviewLen = 200

// =============================================================================
// MODELS
// =============================================================================

// HandleModels lists the backend's models and marks the one a new session
// would select.
func (a *App) HandleModels(ctx context.Context, args Args) error {
	models, err := a.Client.ListModels(ctx)
	if err != nil {
		return err
	}

	def := a.defaultModel(models, args)
	if args.JSON {
		return NewJSONResponse("models", ModelListData{Models: models, Default: def}).Print(a.Stdout)
	}

	if len(models) == 0 {
		a.note(args, "No models available")
		return nil
	}
	for _, m := range models {
		marker := "  "
		line := fmt.Sprintf("%-40s %s", m.Key(), m.Label())
		if m.Key() == def {
			marker = HighlightStyle.Render("* ")
		}
		fmt.Fprintln(a.Stdout, marker+line)
		if m.Description != "" && args.Verbose {
			fmt.Fprintln(a.Stdout, "    "+DimStyle.Render(m.Description))
		}
	}
	return nil
}

// defaultModel applies the same preference a new session uses.
func (a *App) defaultModel(models []model.ModelDescriptor, args Args) string {
	preferred := args.Model
	if preferred == "" && a.Config != nil {
		preferred = a.Config.DefaultModel
	}
	if preferred != "" {
		if provider, name, err := model.ParseModelKey(preferred); err == nil {
			if m, ok := model.FindModel(models, provider, name); ok {
				return m.Key()
			}
		}
	}
	if m, ok := model.PickDefault(models); ok {
		return m.Key()
	}
	return ""
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// HandleConversations lists conversations in backend order.
func (a *App) HandleConversations(ctx context.Context, args Args) error {
	convs, err := a.Client.ListConversations(ctx)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("conversations", convs).Print(a.Stdout)
	}
	if len(convs) == 0 {
		a.note(args, "No conversations yet")
		return nil
	}

	now := time.Now()
	for _, c := range convs {
		fmt.Fprintf(a.Stdout, "%s  %s  %s\n",
			DimStyle.Render(util.PadRight(c.ID, 36)),
			util.PadRight(util.TruncateWidth(c.DisplayTitle(), 40), 40),
			DimStyle.Render(util.FormatDate(c.UpdatedAt.Time, now)))
	}
	return nil
}

// HandleShow prints a conversation thread.
func (a *App) HandleShow(ctx context.Context, args Args) error {
	detail, err := a.Client.GetConversation(ctx, args.ConversationID)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("show", detail).Print(a.Stdout)
	}

	title := detail.Title
	if title == "" {
		title = model.DefaultConversationTitle
	}
	fmt.Fprintln(a.Stdout, TitleStyle.Render(title))
	if detail.ModelProvider != "" || detail.ModelName != "" {
		fmt.Fprintln(a.Stdout, DimStyle.Render(detail.ModelProvider+"/"+detail.ModelName))
	}
	fmt.Fprintln(a.Stdout, RenderSeparator(min(a.Width, 60)))

	if detail.IsEmpty() {
		a.note(args, "No messages yet")
		return nil
	}
	for _, m := range detail.Messages {
		a.printMessage(m)
	}
	return nil
}

// messageHeader is "You · 14:02 · gpt-4 · 📎" with empty parts omitted.
func messageHeader(m *model.Message) string {
	parts := []string{m.Role.DisplayName()}
	if clock := util.FormatClock(m.Timestamp.Time); clock != "" {
		parts = append(parts, clock)
	}
	if m.ModelUsed != "" && m.Role == model.RoleAssistant {
		parts = append(parts, m.ModelUsed)
	}
	if m.HasAttachment() {
		parts = append(parts, "📎")
	}
	return strings.Join(parts, " · ")
}

// printMessage writes one message with its header.
func (a *App) printMessage(m *model.Message) {
	header := messageHeader(m)
	switch m.Role {
	case model.RoleUser:
		header = userRoleStyle.Render(header)
	case model.RoleAssistant:
		header = assistantRoleStyle.Render(header)
	default:
		header = DimStyle.Render(header)
	}
	fmt.Fprintln(a.Stdout, header)

	body := m.Content
	if m.Role == model.RoleAssistant {
		body = a.renderMarkdown(body)
	}
	fmt.Fprintln(a.Stdout, body)
	fmt.Fprintln(a.Stdout)
}

// HandleDelete deletes a conversation.
func (a *App) HandleDelete(ctx context.Context, args Args) error {
	ok, err := a.RequireConfirmation("delete conversation "+args.ConversationID, ConfirmationOptions{
		ConfirmFlag: args.Confirm,
		JSONMode:    args.JSON,
	})
	if err != nil {
		return err
	}
	if !ok {
		a.note(args, "Cancelled.")
		return nil
	}

	ack, err := a.Client.DeleteConversation(ctx, args.ConversationID)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("delete", map[string]string{
			"conversation_id": args.ConversationID,
			"message":         ack.Message,
		}).Print(a.Stdout)
	}
	a.note(args, "%s Deleted conversation %s", SuccessStyle.Render("[OK]"), args.ConversationID)
	return nil
}

// =============================================================================
// UPLOAD
// =============================================================================

// openUpload checks a local file against the upload rules and opens it.
func openUpload(path string) (*os.File, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", ErrNotFound("file", path)
		}
		return nil, "", err
	}
	if info.IsDir() {
		return nil, "", NewValidationError("path", path, "is a directory")
	}
	name := filepath.Base(path)
	if err := attachment.CheckUpload(name, info.Size()); err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return f, name, nil
}

// HandleUpload uploads a document and prints a summary of the extracted
// text. Nothing is staged; use ask --file to send a document.
func (a *App) HandleUpload(ctx context.Context, args Args) error {
	f, name, err := openUpload(args.File)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.Client.UploadFile(ctx, f, name)
	if err != nil {
		return err
	}

	data := UploadData{
		Filename: result.Filename,
		Type:     result.Type,
		Size:     result.Size,
		Chars:    len([]rune(result.Content)),
		Preview:  util.TruncateRunes(strings.Join(strings.Fields(result.Content), " "), uploadPreviewLen),
	}
	if args.JSON {
		return NewJSONResponse("upload", data).Print(a.Stdout)
	}

	fmt.Fprintln(a.Stdout, attachment.FromUpload(result).Label())
	fmt.Fprintf(a.Stdout, "%s%d characters extracted\n", RenderLabel("Content"), data.Chars)
	if data.Preview != "" && !args.Quiet {
		fmt.Fprintln(a.Stdout, DimStyle.Render(data.Preview))
	}
	return nil
}

// =============================================================================
// HEALTH
// =============================================================================

// HandleHealth probes the backend and lists per-provider availability.
func (a *App) HandleHealth(ctx context.Context, args Args) error {
	health, err := a.Client.Health(ctx)
	if err != nil {
		if args.JSON {
			return err
		}
		fmt.Fprintf(a.Stdout, "%s%s %s\n", RenderLabel("Backend"), RenderStatus("fail"), a.Client.BaseURL())
		return err
	}

	if args.JSON {
		return NewJSONResponse("health", map[string]interface{}{
			"url":              a.Client.BaseURL(),
			"status":           health.Status,
			"version":          health.Version,
			"models_available": health.ModelsAvailable,
		}).Print(a.Stdout)
	}

	status := "fail"
	if health.Healthy() {
		status = "ok"
	}
	fmt.Fprintf(a.Stdout, "%s%s %s\n", RenderLabel("Backend"), RenderStatus(status), a.Client.BaseURL())
	if health.Version != "" {
		fmt.Fprintf(a.Stdout, "%s%s\n", RenderLabel("Version"), health.Version)
	}

	providers := make([]string, 0, len(health.ModelsAvailable))
	for p := range health.ModelsAvailable {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	for _, p := range providers {
		fmt.Fprintf(a.Stdout, "%s%s\n", RenderLabel(p), RenderStatus(fmt.Sprint(health.ModelsAvailable[p])))
	}

	if !health.Healthy() {
		return NewCommandError("health", "backend reported status "+health.Status, nil)
	}
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

// HandleExport fetches a conversation and writes it as Markdown or JSON.
// An output of "-" prints to stdout instead of a file.
func (a *App) HandleExport(ctx context.Context, args Args) error {
	opts := export.DefaultOptions()
	if args.Output != "" && args.Output != "-" {
		opts.OutputDir = args.Output
	}
	exporter, err := export.ForFormat(args.Format, opts)
	if err != nil {
		return NewValidationErrorWithExample("format", args.Format, "must be md or json", "chatdesk export ID --format json")
	}

	detail, err := a.Client.GetConversation(ctx, args.ConversationID)
	if err != nil {
		return err
	}

	if args.Output == "-" {
		content, err := exporter.Export(detail)
		if err != nil {
			return NewCommandError("export", "could not render conversation", err)
		}
		_, err = a.Stdout.Write(content)
		return err
	}

	path, err := export.ExportToFile(detail, exporter, opts)
	if err != nil {
		return NewCommandError("export", "could not write file", err)
	}
	a.Logger.Info("conversation exported", "id", detail.ID, "path", path)

	if args.JSON {
		return NewJSONResponse("export", map[string]interface{}{
			"id":        detail.ID,
			"path":      path,
			"mime_type": exporter.MimeType(),
		}).Print(a.Stdout)
	}
	a.note(args, "%s Exported to %s", RenderStatus("ok"), path)
	return nil
}

// =============================================================================
// CONFIG
// =============================================================================

// HandleConfig shows or edits the configuration file.
func (a *App) HandleConfig(args Args) error {
	switch args.Subcommand {
	case "", "show":
		if args.JSON {
			return NewJSONResponse("config", a.Config).Print(a.Stdout)
		}
		fmt.Fprint(a.Stdout, a.Config.String())
		return nil

	case "path":
		_, statErr := os.Stat(a.ConfigPath)
		if args.JSON {
			return NewJSONResponse("config", ConfigPathData{Path: a.ConfigPath, Exists: statErr == nil}).Print(a.Stdout)
		}
		fmt.Fprintln(a.Stdout, a.ConfigPath)
		return nil

	case "get":
		if args.ConfigKey == "" {
			return ErrMissingArgument("key", "chatdesk config get backend.url")
		}
		v, err := a.Config.Get(args.ConfigKey)
		if err != nil {
			return NewValidationErrorWithExample("key", args.ConfigKey, err.Error(), strings.Join(config.GetAllKeys(), ", "))
		}
		if args.JSON {
			return NewJSONResponse("config", map[string]interface{}{args.ConfigKey: v}).Print(a.Stdout)
		}
		fmt.Fprintln(a.Stdout, v)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return ErrMissingArgument("key and value", "chatdesk config set backend.url http://localhost:5669")
		}
		return a.setConfig(args)

	default:
		return NewValidationErrorWithExample("config subcommand", args.Subcommand, "unknown subcommand", "chatdesk config [show|path|get KEY|set KEY VALUE]")
	}
}

// setConfig updates one key in the config file. The file is re-read so
// environment overrides in effect for this process are not persisted.
func (a *App) setConfig(args Args) error {
	cfg := config.Default()
	if _, err := os.Stat(a.ConfigPath); err == nil {
		loaded, err := config.ReadFile(a.ConfigPath)
		if err != nil {
			return &ConfigError{Path: a.ConfigPath, Err: err}
		}
		cfg = loaded
	}

	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return NewValidationErrorWithExample("key", args.ConfigKey, err.Error(), strings.Join(config.GetAllKeys(), ", "))
	}
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Path: a.ConfigPath, Err: err}
	}
	if err := config.SaveTOML(cfg, a.ConfigPath); err != nil {
		return &ConfigError{Path: a.ConfigPath, Err: err}
	}

	if args.JSON {
		v, _ := cfg.Get(args.ConfigKey)
		return NewJSONResponse("config", map[string]interface{}{args.ConfigKey: v}).Print(a.Stdout)
	}
	a.note(args, "%s %s updated in %s", SuccessStyle.Render("[OK]"), args.ConfigKey, a.ConfigPath)
	return nil
}

// =============================================================================
// VERSION
// =============================================================================

// HandleVersion prints version information.
func (a *App) HandleVersion(args Args) error {
	if args.JSON {
		return NewJSONResponse("version", VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		}).Print(a.Stdout)
	}
	PrintVersion(a.Stdout)
	return nil
}
