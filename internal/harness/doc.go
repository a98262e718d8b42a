// Package harness runs send scenarios described in YAML against the real
// orchestrator, with a fake clock, an in-memory sent-log and a recording
// gateway, and checks the outcome.
//
// # Scenario Format
//
//	name: resume_skips_sent
//	description: "A number in the sent-log is skipped"
//	run_id: run-resume
//	message: "Hi"
//	pacing: 30          # seconds handed to the gateway
//	delay: 5            # optional fixed pause after each item, default 5
//	country_code: "60"  # optional
//	sent:               # sent-log contents before the run
//	  - "+60122222222"
//	batch:              # raw cells; normalized like a spreadsheet column
//	  - "0111111111"
//	  - 122222222
//	failures:           # gateway errors keyed by canonical number
//	  "+60133333333": "browser closed"
//	cancel_after: 1     # optional: cancel once N dispatches have returned
//	assertions:
//	  - type: dispatched
//	    numbers: ["+60111111111"]
//	  - type: summary
//	    expect: { sent: 1, skipped: 1 }
//
// # Assertion Types
//
//   - dispatched: the gateway saw exactly these numbers, in order
//   - recorded: the sent-log holds exactly these numbers, in order
//   - event_order: the event kinds appear in this relative order
//   - event_count: the event kind appears exactly Count times
//   - summary: subset match on the run summary counters
//   - elapsed: fake time spent by the run, in seconds
//
// # Golden Transcripts
//
// RunWithGolden compares the operator transcript (one Event.String line
// per event) against testdata/golden/{name}.golden. Regenerate with
//
//	go test ./internal/harness -update
package harness
