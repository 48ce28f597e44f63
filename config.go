package main

import "time"

// Window and pacing constants for the live overlay. Sizes, calibration and
// the demo sandbox come from internal/config.
const (
	windowTitle       = "Sandbox AR overlay"
	defaultTPS        = 30.0
	defaultSimSteps   = 1
	simStepsStep      = 1
	minSimSteps       = 1
	maxSimSteps       = 20
	slowFrameLogEvery = 5 * time.Second
	slowFrameBudget   = time.Second / defaultTPS
)
