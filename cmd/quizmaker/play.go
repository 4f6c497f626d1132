package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/saulo-duarte/quizmaker/internal/client"
	"github.com/saulo-duarte/quizmaker/internal/domain/models"
	"github.com/saulo-duarte/quizmaker/internal/session"
)

var errQuit = errors.New("quit")

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	hintColor    = color.New(color.FgHiBlack)
)

// player renders a session in the terminal and feeds it the user's input.
type player struct {
	api      *client.Client
	session  *session.Session
	in       *bufio.Scanner
	out      io.Writer
	category string
}

func newPlayer(api *client.Client, s *session.Session, in io.Reader, out io.Writer) *player {
	return &player{api: api, session: s, in: bufio.NewScanner(in), out: out}
}

func (p *player) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return errQuit
		}

		var err error
		switch p.session.State() {
		case session.SelectingTopic:
			err = p.selectTopic(ctx)
		case session.Preview:
			err = p.preview()
		case session.Taking:
			err = p.take()
		case session.Results:
			err = p.results(ctx)
		case session.ViewingPublished:
			err = p.browse(ctx)
		}
		if errors.Is(err, errQuit) {
			return err
		}
		if err != nil {
			errorColor.Fprintln(p.out, err.Error())
		}
	}
}

func (p *player) ask(label string) (string, error) {
	fmt.Fprintf(p.out, "%s ", label)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	return strings.TrimSpace(p.in.Text()), nil
}

func (p *player) selectTopic(ctx context.Context) error {
	titleColor.Fprintln(p.out, "\nAI Quiz Maker")
	choice, err := p.ask("[g]enerate a quiz, [b]rowse published quizzes or [q]uit:")
	if err != nil {
		return err
	}

	switch strings.ToLower(choice) {
	case "g":
		category, err := p.pickCategory(ctx)
		if err != nil {
			return err
		}
		title, err := p.ask("Quiz title:")
		if err != nil {
			return err
		}
		if category == "" || title == "" {
			return errors.New("Please select a category and enter a title.")
		}
		p.category = category
		hintColor.Fprintln(p.out, "Generating...")
		return p.session.Generate(ctx, category, title)
	case "b":
		return p.session.ViewPublished(ctx)
	case "q":
		return errQuit
	}
	return nil
}

// pickCategory lists the stored categories and lets the user pick one by
// number or type a new title, which is created first.
func (p *player) pickCategory(ctx context.Context) (string, error) {
	categories, err := p.api.Categories(ctx)
	if err != nil {
		return "", err
	}
	for i, c := range categories {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, c.Title)
	}

	answer, err := p.ask("Category (number or new name):")
	if err != nil {
		return "", err
	}
	if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 && n <= len(categories) {
		return categories[n-1].Title, nil
	}
	if answer == "" {
		return "", nil
	}

	created, err := p.api.AddCategory(ctx, answer)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		// Already stored under this title.
		return answer, nil
	}
	if err != nil {
		return "", err
	}
	successColor.Fprintf(p.out, "Category %q added.\n", created.Title)
	return created.Title, nil
}

func (p *player) preview() error {
	quiz := p.session.Snapshot().Quiz
	titleColor.Fprintln(p.out, "\n"+quiz.Title)
	fmt.Fprintln(p.out, quiz.Description)
	fmt.Fprintf(p.out, "%d questions\n", len(quiz.Questions))

	choice, err := p.ask("[s]tart or [r]eset:")
	if err != nil {
		return err
	}
	switch strings.ToLower(choice) {
	case "s":
		return p.session.StartQuiz()
	case "r":
		return p.session.Reset()
	}
	return nil
}

func (p *player) take() error {
	quiz := p.session.Snapshot().Quiz
	for i, q := range quiz.Questions {
		titleColor.Fprintf(p.out, "\nQuestion %d of %d\n", i+1, len(quiz.Questions))
		fmt.Fprintln(p.out, q.Question)
		for j, a := range q.Answers {
			fmt.Fprintf(p.out, "  %d) %s\n", j+1, a.Answer)
		}

		for {
			answer, err := p.ask("Your answer:")
			if err != nil {
				return err
			}
			n, convErr := strconv.Atoi(answer)
			if convErr != nil || n < 1 || n > len(q.Answers) {
				errorColor.Fprintln(p.out, "Pick one of the listed numbers.")
				continue
			}
			if err := p.session.SelectAnswer(q.ID, q.Answers[n-1].ID); err != nil {
				return err
			}
			break
		}
	}

	_, err := p.session.Submit()
	return err
}

func (p *player) results(ctx context.Context) error {
	snap := p.session.Snapshot()
	printResults(p.out, snap)

	label := "[p]ublish, [n]ew quiz or [q]uit:"
	if snap.PublishStatus == session.PublishSuccess {
		label = "[n]ew quiz or [q]uit:"
	}
	choice, err := p.ask(label)
	if err != nil {
		return err
	}
	switch strings.ToLower(choice) {
	case "p":
		published, err := p.session.Publish(ctx, p.category)
		if err != nil {
			return err
		}
		successColor.Fprintf(p.out, "%s (id %d)\n", published.Message, published.QuizID)
		return nil
	case "n":
		return p.session.Reset()
	case "q":
		return errQuit
	}
	return nil
}

func printResults(out io.Writer, snap session.Snapshot) {
	r := snap.Result
	titleColor.Fprintf(out, "\nYou scored %d of %d (%d%%)\n", r.Correct, r.Total, r.Percentage)

	for i, q := range snap.Quiz.Questions {
		picked, _ := q.FindAnswer(snap.Answers[q.ID])
		correct, _ := q.CorrectAnswer()

		fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Question)
		if picked.Correct {
			successColor.Fprintf(out, "   %s\n", picked.Answer)
		} else {
			errorColor.Fprintf(out, "   %s\n", picked.Answer)
			successColor.Fprintf(out, "   %s\n", correct.Answer)
		}
		hintColor.Fprintf(out, "   %s\n", q.Explanation)
	}

	switch snap.PublishStatus {
	case session.PublishSuccess:
		successColor.Fprintln(out, "\nPublished.")
	case session.PublishError:
		errorColor.Fprintln(out, "\nPublishing failed.")
	}
}

func (p *player) browse(ctx context.Context) error {
	published := p.session.Snapshot().Published
	if len(published) == 0 {
		hintColor.Fprintln(p.out, "\nNo published quizzes yet.")
	}
	printPublished(p.out, published)

	choice, err := p.ask("Quiz id or [b]ack:")
	if err != nil {
		return err
	}
	if strings.ToLower(choice) == "b" {
		return p.session.Back()
	}
	id, convErr := strconv.ParseUint(choice, 10, 64)
	if convErr != nil {
		return nil
	}
	return p.session.SelectQuiz(ctx, uint(id))
}

func printPublished(out io.Writer, content []models.CategoryWithQuizzes) {
	for _, c := range content {
		titleColor.Fprintf(out, "\n%s\n", c.Title)
		for _, q := range c.Quizzes {
			fmt.Fprintf(out, "  [%d] %s  ", q.ID, q.Title)
			hintColor.Fprintln(out, q.CreateDate.String())
		}
	}
}
