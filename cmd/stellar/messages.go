package main

import (
	"fmt"
	"io"
	"math/rand"
	"time"
)

// Rover status lines printed around a text-mode run. They use their own
// clock-seeded random source and never touch model randomness.
var roverMessages = map[string][]string{
	"start": {
		"Rover initializing...",
		"Beginning search for sustainable areas...",
		"Scanning planet surface...",
	},
	"processing": {
		"Analyzing data streams...",
		"Compiling oxygen and soil quality metrics...",
		"Evaluating life sustainability scores...",
	},
	"found": {
		"Area found! Deploying farming rover (Rover 2)...",
		"Optimal area detected! Activating recycling unit (Rover 3)...",
	},
	"end": {
		"Mission success! Area marked for colonization.",
		"Operation complete! Suitable zone secured.",
	},
}

type narrator struct {
	w   io.Writer
	rnd *rand.Rand
}

// newNarrator returns a narrator writing to w, or a silent one when w is nil.
func newNarrator(w io.Writer) *narrator {
	return &narrator{w: w, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (n *narrator) say(stage string) {
	if n.w == nil {
		return
	}
	msgs := roverMessages[stage]
	if len(msgs) == 0 {
		return
	}
	fmt.Fprintln(n.w, msgs[n.rnd.Intn(len(msgs))])
}
