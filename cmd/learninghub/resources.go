package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/samber/do/v2"

	"github.com/learninghub/learninghub/internal/di"
	"github.com/learninghub/learninghub/internal/domain"
	"github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/filters"
	"github.com/learninghub/learninghub/internal/form"
	"github.com/learninghub/learninghub/internal/service"
	"github.com/learninghub/learninghub/internal/tagselect"
	"github.com/learninghub/learninghub/internal/util"
	"github.com/learninghub/learninghub/internal/validation"
	"github.com/learninghub/learninghub/internal/view"
)

func runList(ctx context.Context, injector *do.RootScope, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	search := fs.String("search", "", "Title or description substring")
	typ := fs.String("type", "", "video, pdf or article")
	tags := fs.String("tags", "", "Comma-separated tags, any may match")
	page := fs.Int("page", 1, "Page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := di.Resources(injector)
	if err != nil {
		return err
	}

	v := url.Values{}
	for key, val := range map[string]string{filters.ParamSearch: *search, filters.ParamType: *typ, filters.ParamTags: *tags} {
		if val != "" {
			v.Set(key, val)
		}
	}
	ctrl := filters.New(filters.NewMemoryURL(v))
	lib := svc.NewLibrary(ctrl)
	defer lib.Stop()

	tagRes := lib.LoadTags(ctx)
	ctrl.SetCurrentPage(*page)
	return writePage(ctx, w, svc, lib, tagRes.Data)
}

func runShow(ctx context.Context, injector *do.RootScope, args []string, w io.Writer) error {
	resourceID, err := oneID("show", args)
	if err != nil {
		return err
	}
	svc, err := di.Resources(injector)
	if err != nil {
		return err
	}

	res := svc.NewDetailQuery().Run(ctx, resourceID)
	if res.Err != nil {
		return res.Err
	}
	return view.RenderDetail(w, *res.Data)
}

func runTags(ctx context.Context, injector *do.RootScope, _ []string, w io.Writer) error {
	svc, err := di.Resources(injector)
	if err != nil {
		return err
	}

	res := svc.NewTagsQuery().Run(ctx)
	if res.Err != nil {
		return res.Err
	}
	return view.RenderTags(w, res.Data, nil)
}

func runCreate(ctx context.Context, injector *do.RootScope, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	ff := bindFormFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := di.Resources(injector)
	if err != nil {
		return err
	}

	f := form.NewCreate(do.MustInvoke[*validation.Validator](injector))
	if err := ff.apply(fs, f, tagCatalog(ctx, svc)); err != nil {
		return err
	}
	payload, err := f.CreatePayload()
	if err != nil {
		return err
	}

	res := svc.NewCreateMutation().Run(ctx, payload)
	if res.Err != nil {
		return res.Err
	}

	if err := view.RenderFlash(w, svc.Flash().List()); err != nil {
		return err
	}
	return view.RenderDetail(w, *res.Data)
}

func runUpdate(ctx context.Context, injector *do.RootScope, args []string, w io.Writer) error {
	if len(args) == 0 {
		return errors.Validation("usage: update <id> [flags]")
	}
	resourceID, args := args[0], args[1:]

	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	ff := bindFormFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	svc, err := di.Resources(injector)
	if err != nil {
		return err
	}
	current := svc.NewDetailQuery().Run(ctx, resourceID)
	if current.Err != nil {
		return current.Err
	}

	f := form.NewUpdate(do.MustInvoke[*validation.Validator](injector), *current.Data)
	if err := ff.apply(fs, f, tagCatalog(ctx, svc)); err != nil {
		return err
	}
	delta, err := f.UpdateDelta()
	if err != nil {
		return err
	}
	if delta.Empty() {
		_, err := fmt.Fprintln(w, "Nothing to update")
		return err
	}

	res := svc.NewUpdateMutation().Run(ctx, delta)
	if res.Err != nil {
		return res.Err
	}

	if err := view.RenderFlash(w, svc.Flash().List()); err != nil {
		return err
	}
	return view.RenderDetail(w, *res.Data)
}

func runDelete(ctx context.Context, injector *do.RootScope, args []string, w io.Writer) error {
	resourceID, err := oneID("delete", args)
	if err != nil {
		return err
	}
	svc, err := di.Resources(injector)
	if err != nil {
		return err
	}

	res := svc.NewDeleteMutation().Run(ctx, resourceID)
	if res.Err != nil {
		return res.Err
	}
	return view.RenderFlash(w, svc.Flash().List())
}

func oneID(name string, args []string) (string, error) {
	if len(args) != 1 || args[0] == "" {
		return "", errors.Validationf("usage: %s <id>", name)
	}
	return args[0], nil
}

// formFlags are the resource fields settable from the command line.
type formFlags struct {
	title        *string
	description  *string
	typ          *string
	url          *string
	thumbnailURL *string
	tags         *string
	file         *string
	thumbnail    *string
}

func bindFormFlags(fs *flag.FlagSet) *formFlags {
	return &formFlags{
		title:        fs.String("title", "", "Title"),
		description:  fs.String("description", "", "Description"),
		typ:          fs.String("type", "", "video, pdf or article"),
		url:          fs.String("url", "", "Link, required for articles"),
		thumbnailURL: fs.String("thumbnail-url", "", "Thumbnail link"),
		tags:         fs.String("tags", "", "Comma-separated tags"),
		file:         fs.String("file", "", "Path of the video or PDF to upload"),
		thumbnail:    fs.String("thumbnail", "", "Path of a thumbnail image to upload"),
	}
}

// apply copies the flags that were set onto f. The type goes first since
// changing it on a create form drops the URL and file. catalog is only
// called when -tags is set.
func (ff *formFlags) apply(fs *flag.FlagSet, f *form.Form, catalog func() []domain.Tag) error {
	set := map[string]bool{}
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if set["type"] {
		f.SetType(domain.ResourceType(*ff.typ))
	}
	if set["title"] {
		f.SetTitle(*ff.title)
	}
	if set["description"] {
		f.SetDescription(*ff.description)
	}
	if set["url"] {
		f.SetURL(*ff.url)
	}
	if set["thumbnail-url"] {
		f.SetThumbnailURL(*ff.thumbnailURL)
	}
	if set["tags"] {
		f.SetTags(pickTags(catalog(), domain.SplitList(*ff.tags)))
	}
	if set["file"] {
		u, err := readUpload(*ff.file)
		if err != nil {
			return err
		}
		f.SetFile(u)
	}
	if set["thumbnail"] {
		u, err := readUpload(*ff.thumbnail)
		if err != nil {
			return err
		}
		f.SetThumbnail(u)
	}
	return nil
}

// tagCatalog returns a loader for the existing tags. A failed load yields
// no tags, so every name is then authored as new.
func tagCatalog(ctx context.Context, svc *service.ResourceService) func() []domain.Tag {
	return func() []domain.Tag {
		res := svc.NewTagsQuery().Run(ctx)
		if res.Err != nil {
			return nil
		}
		return res.Data
	}
}

// pickTags enters names into a tag input over catalog the way a user would:
// a name matching an existing tag selects it with its stored spelling, any
// other name is added as a new tag.
func pickTags(catalog []domain.Tag, names []string) []string {
	in := tagselect.New(tagselect.FromTags(catalog), tagselect.AllowNew())
	for _, name := range names {
		in.SetInput(name)
		for _, c := range in.Candidates() {
			if c.IsNew || util.EqualFold(c.Name, strings.TrimSpace(name)) {
				in.Select(c)
				break
			}
		}
		in.Close()
	}
	return in.Names()
}
