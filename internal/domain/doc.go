// Package domain models earthquake events, recording stations, and the
// strong-motion signals recorded for them.
//
// # Data Sources
//
// Event and station metadata come from two CSV files maintained alongside the
// service (events.csv and stations.csv). Acceleration records are AFAD-style
// ".asc" exports: one sample per line, optionally preceded by header lines
// such as "EVENT_NAME: ...". Non-numeric lines are ignored.
//
// # Conventions
//
// Event IDs:
//
//	Free-form strings, compared after trimming surrounding whitespace,
//	e.g. "19990817_01" or " 20230206_01 " → "20230206_01".
//
// Sampling:
//
//	Every RawSignal carries its own SampleRate (Hz). Sample i occurs at
//	t = i / SampleRate. There is no per-feature sampling constant; the
//	default rate of 100 Hz matches the 0.01 s integration step used for
//	velocity, displacement, and Arias intensity.
//
// Units:
//
//	Acceleration is reported in the units of the source file (cm/s² for
//	AFAD records); velocity and displacement follow as cm/s and cm.
//	Station PGA columns are in g. Depth is in km, Vs30 in m/s.
//
// # Features
//
// The derivable views form a closed set (see [Features]). Each is a pure
// function of a RawSignal and fixed parameters. The response spectrum and
// P/S phase markers default to illustrative models; they are tagged with
// [ResponseModel] and [PhaseModel] so accurate variants can be selected
// without changing the DerivedSeries contract.
package domain
