// Package view renders the resource library as plain text for the CLI and
// the dev gateway.
package view

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/filters"
	"github.com/learninghub/learninghub/internal/flash"
	"github.com/learninghub/learninghub/internal/util"
)

const titleWidth = 40

// Empty-state texts.
const (
	EmptyTitle          = "No resources found"
	EmptyHintFiltered   = "Try adjusting your filters or search query"
	EmptyHintUnfiltered = "Get started by creating your first resource"
	LoadingText         = "Loading resources..."
)

// List is what the resource list shows.
type List struct {
	Resources        []domain.Resource
	Loading          bool
	HasActiveFilters bool
}

// RenderList writes the result count and one row per resource, or the
// empty state.
func RenderList(w io.Writer, l List) error {
	if l.Loading && len(l.Resources) == 0 {
		_, err := fmt.Fprintln(w, LoadingText)
		return err
	}
	if len(l.Resources) == 0 {
		hint := EmptyHintUnfiltered
		if l.HasActiveFilters {
			hint = EmptyHintFiltered
		}
		_, err := fmt.Fprintf(w, "%s\n%s\n", EmptyTitle, hint)
		return err
	}

	n := len(l.Resources)
	if _, err := fmt.Fprintf(w, "Showing %d of %d resources\n\n", n, n); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tTITLE\tTAGS\tUPDATED")
	for _, r := range l.Resources {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Type, util.Truncate(r.Title, titleWidth), strings.Join(r.Tags, ","), date(r.UpdatedAt))
	}
	return tw.Flush()
}

// RenderTags writes the tag bar, marking selected tags.
func RenderTags(w io.Writer, tags []domain.Tag, selected []string) error {
	if len(tags) == 0 {
		_, err := fmt.Fprintln(w, "Tags: none")
		return err
	}
	sel := make(map[string]bool, len(selected))
	for _, s := range selected {
		sel[s] = true
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		mark := " "
		if sel[t.Name] {
			mark = "x"
		}
		parts[i] = fmt.Sprintf("[%s] %s (%d)", mark, t.Name, t.UsageCount)
	}
	_, err := fmt.Fprintf(w, "Tags: %s\n", strings.Join(parts, "  "))
	return err
}

// RenderPagination writes the page footer with the available moves.
func RenderPagination(w io.Writer, page int, hasMore bool) error {
	parts := []string{fmt.Sprintf("Page %d", max(page, 1))}
	if page > 1 {
		parts = append(parts, "< Prev")
	}
	if hasMore {
		parts = append(parts, "Next >")
	}
	_, err := fmt.Fprintln(w, strings.Join(parts, "  "))
	return err
}

// RenderFilters writes the active filters and whether they can be cleared.
func RenderFilters(w io.Writer, st filters.State) error {
	search := st.ActiveSearch
	if search == "" {
		search = "-"
	}
	line := fmt.Sprintf("Search: %s  Type: %s", search, typeLabel(st.SelectedType))
	if st.ActiveSearch != "" || st.SelectedType != domain.TypeAll || len(st.SelectedTags) > 0 {
		line += "  [Clear]"
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// RenderDetail writes every field of one resource.
func RenderDetail(w io.Writer, r domain.Resource) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"ID", r.ID},
		{"Title", r.Title},
		{"Type", string(r.Type)},
		{"Description", r.Description},
		{"URL", r.URL},
		{"Thumbnail", r.ThumbnailURL},
		{"Tags", strings.Join(r.Tags, ", ")},
		{"Created", r.CreatedAt.Format(time.RFC3339)},
		{"Updated", r.UpdatedAt.Format(time.RFC3339)},
	}
	for _, row := range rows {
		if row[1] == "" {
			continue
		}
		fmt.Fprintf(tw, "%s:\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

// RenderFlash writes the visible notifications, oldest first.
func RenderFlash(w io.Writer, ns []flash.Notification) error {
	for _, n := range ns {
		if _, err := fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(string(n.Kind)), n.Message); err != nil {
			return err
		}
	}
	return nil
}

// RouteError is a failed route, rendered as "<status> <status text>".
type RouteError struct {
	Status     int
	StatusText string
}

// NewRouteError builds a RouteError with the standard status text.
func NewRouteError(status int) *RouteError {
	return &RouteError{Status: status, StatusText: http.StatusText(status)}
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("%d %s", e.Status, e.StatusText)
}

// Boundary texts.
const (
	BoundaryCaption  = "Something went wrong!"
	BoundaryFallback = "Please click reload to load the app again!"
	BoundaryAction   = "Reload App"
	BoundaryHref     = "/"
)

// Boundary is the full-page error state.
type Boundary struct {
	Caption string
	Message string
	Action  string
	Href    string
}

// BoundaryFor builds the error page for err.
func BoundaryFor(err error) Boundary {
	b := Boundary{Caption: BoundaryCaption, Message: BoundaryFallback, Action: BoundaryAction, Href: BoundaryHref}
	var re *RouteError
	switch {
	case errors.As(err, &re):
		b.Message = re.Error()
	case err != nil && errors.Message(err) != "":
		b.Message = errors.Message(err)
	}
	return b
}

// RenderBoundary writes the error page.
func RenderBoundary(w io.Writer, b Boundary) error {
	_, err := fmt.Fprintf(w, "%s\n\n%s\n\n%s: %s\n", b.Caption, b.Message, b.Action, b.Href)
	return err
}

// Page is the complete list screen.
type Page struct {
	Product domain.Product
	State   filters.State
	Tags    []domain.Tag
	List    List
	HasMore bool
	Flash   []flash.Notification
}

// RenderPage writes the flash messages, filters, tag bar, list and footer.
func RenderPage(w io.Writer, p Page) error {
	if _, err := fmt.Fprintf(w, "Learning Hub / %s\n\n", p.Product); err != nil {
		return err
	}
	steps := []func() error{
		func() error { return RenderFlash(w, p.Flash) },
		func() error { return RenderFilters(w, p.State) },
		func() error { return RenderTags(w, p.Tags, p.State.SelectedTags) },
		func() error { _, err := fmt.Fprintln(w); return err },
		func() error { return RenderList(w, p.List) },
	}
	if len(p.List.Resources) > 0 || p.State.CurrentPage > 1 {
		steps = append(steps,
			func() error { _, err := fmt.Fprintln(w); return err },
			func() error { return RenderPagination(w, p.State.CurrentPage, p.HasMore) },
		)
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func typeLabel(t domain.TypeFilter) string {
	if rt, ok := t.ResourceType(); ok {
		return rt.Label()
	}
	return "All Types"
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
