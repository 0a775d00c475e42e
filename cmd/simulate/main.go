package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/Amund211/timba/internal/adapters/rules"
	"github.com/Amund211/timba/internal/domain"
)

type stepKind string

const (
	stepIdle stepKind = "idle"
	stepTap  stepKind = "tap"
	stepBuy  stepKind = "buy"
)

type step struct {
	kind    stepKind
	count   int
	upgrade domain.UpgradeID
}

func parseStep(raw string) (step, error) {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || value == "" {
		return step{}, fmt.Errorf("step %q: expected <idle|tap|buy>=<value>", raw)
	}

	switch stepKind(name) {
	case stepIdle, stepTap:
		count, err := strconv.Atoi(value)
		if err != nil || count < 0 {
			return step{}, fmt.Errorf("step %q: expected a non-negative count", raw)
		}
		return step{kind: stepKind(name), count: count}, nil
	case stepBuy:
		return step{kind: stepBuy, upgrade: domain.UpgradeID(value)}, nil
	}
	return step{}, fmt.Errorf("step %q: unknown action %q", raw, name)
}

// simulate replays steps against a fresh player and writes one timeline row per step
func simulate(out io.Writer, gameRules domain.Rules, steps []step) (domain.PlayerState, error) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "step\tresult\tenergy\tbalance\tpeak\tunlocked")

	state := gameRules.NewPlayerState()
	for _, s := range steps {
		var result string

		switch s.kind {
		case stepIdle:
			state.Energy = gameRules.ResolveRegen(state.Energy, float64(s.count), state.Upgrades)
			result = fmt.Sprintf("regen to %d/%d", state.Energy, gameRules.MaxEnergy(state.Upgrades))
		case stepTap:
			accepted := 0
			reason := domain.DeclineNone
			for range s.count {
				outcome := gameRules.ResolveTap(state)
				if !outcome.Accepted {
					reason = outcome.Reason
					break
				}
				state = outcome.Apply(state).WithPeak()
				accepted++
			}
			result = fmt.Sprintf("%d/%d taps", accepted, s.count)
			if reason != domain.DeclineNone {
				result += fmt.Sprintf(" (%s)", reason)
			}
		case stepBuy:
			outcome := gameRules.ResolvePurchase(state, s.upgrade)
			state = outcome.Apply(state)
			if outcome.Accepted {
				result = fmt.Sprintf("bought %s for %d", s.upgrade, outcome.Price)
			} else {
				result = fmt.Sprintf("declined %s (%s)", s.upgrade, outcome.Reason)
			}
		}

		evaluation := gameRules.EvaluateAchievements(state.PeakBalance, state.UnlockedAchievements)
		state.UnlockedAchievements = evaluation.Unlocked

		unlocked := make([]string, 0, len(evaluation.NewlyUnlocked))
		for _, achievement := range evaluation.NewlyUnlocked {
			unlocked = append(unlocked, achievement.Title)
		}

		label := fmt.Sprintf("%s=%d", s.kind, s.count)
		if s.kind == stepBuy {
			label = fmt.Sprintf("%s=%s", s.kind, s.upgrade)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			label, result, state.Energy, state.Balance, state.PeakBalance, strings.Join(unlocked, ", "),
		)
	}

	if err := w.Flush(); err != nil {
		return state, fmt.Errorf("failed to write timeline: %w", err)
	}
	return state, nil
}

func main() {
	rulesPath := flag.String("rules", "", "path to a YAML balance file (defaults to the built-in rules)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-rules path] step...\n", os.Args[0])
		fmt.Fprintln(flag.CommandLine.Output(), "Steps: idle=<seconds> tap=<count> buy=<upgradeId>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	gameRules, err := rules.Load(*rulesPath)
	if err != nil {
		log.Fatalf("Failed loading rules: %v", err)
	}

	steps := make([]step, 0, flag.NArg())
	for _, raw := range flag.Args() {
		s, err := parseStep(raw)
		if err != nil {
			log.Fatal(err)
		}
		steps = append(steps, s)
	}

	if _, err := simulate(os.Stdout, gameRules, steps); err != nil {
		log.Fatal(err)
	}
}
