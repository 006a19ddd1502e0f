package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samber/do/v2"

	"github.com/learninghub/learninghub/internal/config"
	"github.com/learninghub/learninghub/internal/di"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/filters"
	"github.com/learninghub/learninghub/internal/service"
	"github.com/learninghub/learninghub/internal/view"
)

var stdin io.Reader = os.Stdin

const browseHelp = `Type to search; the query commits after a pause.
  :search        commit the search now
  :type <t>      all, video, pdf or article
  :tag <name>    toggle a tag
  :next, :prev   change page
  :clear         reset all filters
  :q             quit
`

func runBrowse(ctx context.Context, injector *do.RootScope, _ []string, w io.Writer) error {
	cfg := do.MustInvoke[*config.Config](injector)
	svc, err := di.Resources(injector)
	if err != nil {
		return err
	}
	return browse(ctx, svc, cfg.Filters.SearchDebounce, nil, stdin, w)
}

// browse runs the interactive list screen until in ends or :q. The page is
// re-rendered whenever the list parameters change, whether from a command
// or from a debounced search commit.
func browse(ctx context.Context, svc *service.ResourceService, debounce time.Duration, schedule filters.Scheduler, in io.Reader, w io.Writer) error {
	ctrl := filters.New(filters.NewMemoryURL(nil))
	lib := svc.NewLibrary(ctrl)
	defer lib.Stop()

	box := filters.NewSearchBox(ctrl, debounce, schedule)
	defer box.Stop()

	changed := make(chan struct{}, 1)
	unsubscribe := ctrl.Subscribe(func(filters.State) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
	}()

	var tags []domain.Tag
	if res := lib.LoadTags(ctx); res.Err == nil {
		tags = res.Data
	}

	shown := "\x00"
	refresh := func() error {
		key := ctrl.QueryParams().Key()
		if key == shown {
			return nil
		}
		shown = key
		fmt.Fprintln(w, "----")
		return writePage(ctx, w, svc, lib, tags)
	}

	if _, err := io.WriteString(w, browseHelp); err != nil {
		return err
	}
	if err := refresh(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-changed:
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleBrowseLine(w, ctrl, box, line); quit {
				return nil
			}
		}
		if err := refresh(); err != nil {
			printError(w, err)
		}
	}
}

// handleBrowseLine applies one input line and reports whether to quit.
func handleBrowseLine(w io.Writer, ctrl *filters.Controller, box *filters.SearchBox, line string) bool {
	if !strings.HasPrefix(line, ":") {
		box.Type(line)
		return false
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "q", "quit":
		return true
	case "search":
		box.Submit()
	case "type":
		ctrl.SetSelectedType(domain.TypeFilter(arg))
	case "tag":
		ctrl.ToggleTag(arg)
	case "next":
		ctrl.NextPage()
	case "prev":
		ctrl.PrevPage()
	case "clear":
		box.Stop()
		ctrl.ClearFilters()
	case "help":
		io.WriteString(w, browseHelp)
	default:
		fmt.Fprintf(w, "Unknown command %q, try :help\n", cmd)
	}
	return false
}

// writePage loads the page ctrl describes and renders the list screen.
func writePage(ctx context.Context, w io.Writer, svc *service.ResourceService, lib *service.Library, tags []domain.Tag) error {
	ctrl := lib.Controller()
	list := lib.LoadList(ctx)
	if list.Err != nil {
		return list.Err
	}
	if list.Superseded {
		return nil
	}

	return view.RenderPage(w, view.Page{
		Product: svc.Product(),
		State:   ctrl.State(),
		Tags:    tags,
		List: view.List{
			Resources:        list.Data.Data,
			HasActiveFilters: ctrl.HasActiveFilters(),
		},
		HasMore: list.Data.HasMore,
		Flash:   svc.Flash().List(),
	})
}
