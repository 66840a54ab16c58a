package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"vidyeet/internal/app/model"
	"vidyeet/internal/upload"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

const rule = "----------------------------------------"

// Renderer writes human output to stderr, or one JSON object per command
// to stdout in machine mode.
type Renderer struct {
	out     io.Writer
	errOut  io.Writer
	machine bool
}

func New(out, errOut io.Writer, machine bool) *Renderer {
	return &Renderer{out: out, errOut: errOut, machine: machine}
}

// NewTerminal picks machine mode when stdout is not a terminal.
func NewTerminal(forceJSON bool) *Renderer {
	fd := os.Stdout.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return New(os.Stdout, os.Stderr, forceJSON || !tty)
}

func (r *Renderer) Machine() bool { return r.machine }

func (r *Renderer) Progress(ev upload.Event) {
	if r.machine {
		return
	}
	msg := ProgressMessage(ev)
	if msg == "" {
		return
	}
	_, _ = fmt.Fprintln(r.errOut, progressStyle(ev).Render(msg))
}

// ProgressMessage is the one-line description of an event.
func ProgressMessage(ev upload.Event) string {
	switch e := ev.(type) {
	case upload.Validating:
		return "Validating file: " + e.Path
	case upload.Validated:
		return fmt.Sprintf("File validated: %s (%s, %s)", e.Name, humanize.IBytes(uint64(e.Size)), e.Format)
	case upload.CreatingSession:
		return "Creating upload session for: " + e.Name
	case upload.SessionCreated:
		return fmt.Sprintf("Upload session created (ID: %s)", e.UploadID)
	case upload.UploadingFile:
		return fmt.Sprintf("Uploading file: %s (%s, %d chunks)...", e.Name, humanize.IBytes(uint64(e.Size)), e.TotalChunks)
	case upload.UploadingChunk:
		return fmt.Sprintf("Uploading chunk %d/%d (%s / %s)", e.Current, e.Total,
			humanize.IBytes(uint64(e.BytesSent)), humanize.IBytes(uint64(e.TotalBytes)))
	case upload.FileUploaded:
		return fmt.Sprintf("File uploaded: %s (%s)", e.Name, humanize.IBytes(uint64(e.Size)))
	case upload.WaitingForAsset:
		if e.ElapsedSeconds == 0 {
			return "Waiting for asset creation..."
		}
		return fmt.Sprintf("Still waiting... (%ds elapsed)", e.ElapsedSeconds)
	case upload.Completed:
		return "Asset created: " + e.AssetID
	default:
		return ""
	}
}

func progressStyle(ev upload.Event) lipgloss.Style {
	switch ev.(type) {
	case upload.Completed, upload.FileUploaded:
		return successStyle
	case upload.UploadingChunk, upload.WaitingForAsset:
		return dimStyle
	default:
		return infoStyle
	}
}

func (r *Renderer) UploadResult(res *model.UploadResult) error {
	if r.machine {
		return r.writeJSON("upload", res, nil)
	}

	var b strings.Builder
	b.WriteString("\n" + successStyle.Render("✓ Upload completed successfully!") + "\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "  Asset ID: %s\n", res.AssetID)

	if res.HLSURL != "" {
		b.WriteString("\n  " + titleStyle.Render("HLS Streaming URL (ready now):") + "\n")
		fmt.Fprintf(&b, "     %s\n", res.HLSURL)
	}

	b.WriteString("\n  " + titleStyle.Render("MP4 Download URL:") + "\n")
	switch res.MP4Status {
	case model.MP4Ready:
		b.WriteString("     Status: " + successStyle.Render("ready") + "\n")
		fmt.Fprintf(&b, "     %s\n", res.MP4URL)
	case model.MP4Generating:
		b.WriteString("     Status: " + warnStyle.Render("generating") + "\n")
		if res.MP4URL != "" {
			fmt.Fprintf(&b, "     %s\n", res.MP4URL)
		}
		b.WriteString(dimStyle.Render("\n     The MP4 file is generated in the background (usually 2-5 minutes).\n     Streaming over HLS works right away.") + "\n")
	default:
		b.WriteString("     (disabled)\n")
	}
	b.WriteString(rule + "\n")

	if res.DeletedOldVideos > 0 {
		b.WriteString("\n" + warnStyle.Render(fmt.Sprintf(
			"Note: Deleted %d old video(s) to stay within the plan's asset limit.", res.DeletedOldVideos)) + "\n")
	}

	_, err := io.WriteString(r.errOut, b.String())
	return err
}

func (r *Renderer) Login(res *model.LoginResult) error {
	if r.machine {
		action := "created"
		if res.WasLoggedIn {
			action = "updated"
		}
		return r.writeJSON("login", res, map[string]any{"action": action})
	}

	if res.WasLoggedIn {
		return r.lines(successStyle.Render("✓ Login credentials updated!"), "New authentication credentials have been saved.")
	}
	return r.lines(successStyle.Render("✓ Login successful!"), "Authentication credentials have been saved.")
}

func (r *Renderer) Logout(res *model.LogoutResult) error {
	if r.machine {
		return r.writeJSON("logout", res, nil)
	}

	if res.WasLoggedIn {
		return r.lines(successStyle.Render("✓ Logged out successfully."), "Authentication credentials have been removed.")
	}
	return r.lines(infoStyle.Render("Already logged out."))
}

func (r *Renderer) Status(res *model.StatusResult) error {
	if r.machine {
		return r.writeJSON("status", res, nil)
	}

	switch {
	case res.IsAuthenticated:
		return r.lines(
			successStyle.Render("✓ Authenticated"),
			fmt.Sprintf("  Token ID: %s (%s)", res.TokenID, res.Source),
			"Your credentials are valid and working.",
		)
	case res.TokenID != "":
		lines := []string{
			errorStyle.Render("✗ Authentication failed"),
			fmt.Sprintf("  Token ID: %s (%s)", res.TokenID, res.Source),
		}
		if res.Detail != "" {
			lines = append(lines, "  "+dimStyle.Render(res.Detail))
		}
		lines = append(lines, "Your credentials may be invalid or expired.", "Run 'vidyeet login' to update them.")
		return r.lines(lines...)
	default:
		return r.lines(
			warnStyle.Render("Not logged in"),
			"No authentication credentials found.",
			"Run 'vidyeet login' to authenticate.",
		)
	}
}

// Error always goes to stderr so stdout stays parseable.
func (r *Renderer) Error(err error, hint string) {
	_, _ = fmt.Fprintln(r.errOut, errorStyle.Render("Error: "+err.Error()))
	if hint != "" {
		_, _ = fmt.Fprintln(r.errOut, infoStyle.Render("Hint: "+hint))
	}
}

func (r *Renderer) Info(msg string) {
	if r.machine {
		return
	}
	_, _ = fmt.Fprintln(r.errOut, infoStyle.Render(msg))
}

func (r *Renderer) lines(lines ...string) error {
	_, err := fmt.Fprintln(r.errOut, "\n"+strings.Join(lines, "\n"))
	return err
}

func (r *Renderer) writeJSON(command string, v any, extra map[string]any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s result: %w", command, err)
	}

	fields := map[string]any{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to marshal %s result: %w", command, err)
	}
	for k, val := range extra {
		fields[k] = val
	}
	fields["success"] = true
	fields["command"] = command

	return json.NewEncoder(r.out).Encode(fields)
}
