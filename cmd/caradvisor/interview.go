package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"caradvisor/internal/model"
	"caradvisor/internal/service"

	"github.com/manifoldco/promptui"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const promptExit = "Exit"

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Answer a few questions in the terminal and get car recommendations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		topK, _ := cmd.Flags().GetInt("top-k")
		return interview(cmd.Context(), topK)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().IntP("top-k", "k", 0, "number of recommendations (default from config)")
}

func interview(ctx context.Context, topK int) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()

	repo, err := rt.openStore(ctx)
	if err != nil {
		return eris.Wrap(err, "open listing store")
	}
	defer repo.Close()

	gen, err := rt.textGenerator(ctx)
	if err != nil {
		return err
	}

	interviews := rt.newInterviewService(gen)
	recommender := rt.newRecommendService(repo, gen)

	start, err := interviews.Start(ctx)
	if err != nil {
		return err
	}

	question := start.Question
	for question != nil {
		answer, err := ask(question)
		if errors.Is(err, promptui.ErrEOF) {
			// Ctrl-D ends the interview with what we have
			if _, err := interviews.Finish(start.SessionID); err != nil {
				return err
			}
			break
		}
		if err != nil {
			return err
		}

		resp, err := interviews.Answer(ctx, start.SessionID, answer)
		if err != nil {
			return err
		}
		rt.logger.Debug("answer recorded", zap.Any("extracted", resp.Extracted))
		question = resp.Question
	}

	profile, history, err := interviews.CompletedProfile(start.SessionID)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(renderProfile(profile))
	fmt.Println()

	resp, err := recommender.RecommendStream(ctx, profile, history, topK, func(event string, data any) error {
		switch event {
		case service.EventFiltering, service.EventScoring:
			if m, ok := data.(map[string]any); ok {
				fmt.Println(mutedStyle.Render(fmt.Sprint(m["status"])))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if len(resp.Recommendations) == 0 {
		fmt.Println(warningStyle.Render("No listings match your answers. Try a wider budget or either condition."))
		return nil
	}

	fmt.Println()
	for _, rec := range resp.Recommendations {
		fmt.Println(renderRecommendation(rec))
	}

	return browseFactors(resp.Recommendations)
}

func ask(q *model.Question) (string, error) {
	prompt := promptui.Prompt{
		Label: fmt.Sprintf("(%d/%d) %s", q.Index, q.Total, q.Text),
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("please type an answer")
			}
			return nil
		},
	}
	return prompt.Run()
}

// browseFactors lets the user open the score breakdown of any result
func browseFactors(recs []model.Recommendation) error {
	items := make([]string, 0, len(recs)+1)
	for _, rec := range recs {
		items = append(items, fmt.Sprintf("#%d %s", rec.Rank, rec.Result.Listing.Title()))
	}
	items = append(items, promptExit)

	for {
		sel := promptui.Select{
			Label: "Show score breakdown",
			Items: items,
		}
		idx, choice, err := sel.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if choice == promptExit {
			return nil
		}
		fmt.Println(renderFactors(recs[idx]))
	}
}
