package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/postkeeper/internal/client/client"
	"github.com/dmitrijs2005/postkeeper/internal/client/models"
	"github.com/dmitrijs2005/postkeeper/internal/common"
)

// report prints a short, user-facing description of err and returns it.
func (a *App) report(err error) error {
	var apiErr *client.APIError
	switch {
	case client.IsUnavailable(err):
		a.setMode(ModeOffline)
		fmt.Fprintln(a.out, "Server is unavailable, try again later")
	case errors.Is(err, client.ErrNotLoggedIn):
		fmt.Fprintln(a.out, "Please log in first")
	case errors.As(err, &apiErr):
		fmt.Fprintf(a.out, "Error: %s\n", apiErr.Message)
	default:
		fmt.Fprintf(a.out, "Error: %s\n", err.Error())
	}
	return err
}

func (a *App) Register(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if _, err := a.api.Register(ctx, name, email, password); err != nil {
		return a.report(err)
	}

	fmt.Fprintln(a.out, "Registered, logging in...")
	return a.login(ctx, email, password)
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.login(ctx, email, password)
}

func (a *App) login(ctx context.Context, email string, password []byte) error {
	if err := a.api.Login(ctx, email, password); err != nil {
		return a.report(err)
	}
	a.setMode(ModeOnline)

	p, err := a.api.Profile(ctx)
	if err != nil {
		a.api.SetToken("")
		return a.report(err)
	}

	a.loggedIn = true
	a.userName = p.Name
	fmt.Fprintf(a.out, "Logged in as %s\n", p.Name)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.api.SetToken("")
	a.loggedIn = false
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) NewPost(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Enter title", a.out)
	if err != nil {
		return err
	}
	text, err := GetMultiline(a.reader, "Enter text", a.out)
	if err != nil {
		return err
	}
	path, err := GetSimpleText(a.reader, "Enter image path (.png, .jpg, .jpeg)", a.out)
	if err != nil {
		return err
	}

	id, err := a.api.CreatePost(ctx, title, text, path)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Post created: %s\n", id)
	return nil
}

func (a *App) MyPosts(ctx context.Context) error {
	posts, err := a.api.MyPosts(ctx)
	if err != nil {
		return a.report(err)
	}
	return printPosts(a.out, posts)
}

func (a *App) AllPosts(ctx context.Context) error {
	posts, err := a.api.AllPosts(ctx)
	if err != nil {
		return a.report(err)
	}
	return printPosts(a.out, posts)
}

// Show prints one post. Without an id the user is asked for one.
func (a *App) Show(ctx context.Context, id string) error {
	if id == "" {
		var err error
		id, err = GetSimpleText(a.reader, "Enter post uuid", a.out)
		if err != nil {
			return err
		}
	}

	p, err := a.api.GetPost(ctx, id)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "%s\n\n%s\n\n", p.Title, p.Text)
	if p.Owner != nil {
		fmt.Fprintf(a.out, "by %s <%s>\n", p.Owner.Name, p.Owner.Email)
	} else {
		fmt.Fprintln(a.out, "by unknown author")
	}
	fmt.Fprintf(a.out, "created %s\n", p.CreatedAt.Local().Format("2006-01-02 15:04"))
	if p.Image != "" {
		fmt.Fprintf(a.out, "image %s\n", a.api.ImageURL(p.UUID))
	}
	return nil
}

// Save downloads the image of a post to a local file. Missing arguments are
// asked for.
func (a *App) Save(ctx context.Context, id, dst string) error {
	var err error
	if id == "" {
		if id, err = GetSimpleText(a.reader, "Enter post uuid", a.out); err != nil {
			return err
		}
	}
	if dst == "" {
		if dst, err = GetSimpleText(a.reader, "Enter destination path", a.out); err != nil {
			return err
		}
	}

	n, err := a.api.DownloadImage(ctx, id, dst)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", n, dst)
	return nil
}

func (a *App) Me(ctx context.Context) error {
	p, err := a.api.Profile(ctx)
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "#%d %s <%s>\n", p.ID, p.Name, p.Email)
	return nil
}

func (a *App) Rename(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Enter new name", a.out)
	if err != nil {
		return err
	}
	if err := a.api.UpdateName(ctx, name); err != nil {
		return a.report(err)
	}
	a.userName = name
	fmt.Fprintln(a.out, "Name updated")
	return nil
}

func printPosts(w io.Writer, posts []models.Post) error {
	if len(posts) == 0 {
		_, err := fmt.Fprintln(w, "No posts")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "UUID\tTITLE\tCREATED")
	for _, p := range posts {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.UUID, p.Title, p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
