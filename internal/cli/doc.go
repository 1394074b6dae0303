// Package cli implements the beamtop command-line interface.
//
// The root command opens the dashboard:
//
//	beamtop [node]      - Live dashboard for a node
//	beamtop init        - Write .beamtop.yaml
//	beamtop version     - Print build information
//
// Running the dashboard goes through the same steps every time:
//
//  1. Load and validate config (file, BEAMTOP_* env, flags, positional node)
//  2. Point log output at --log-file so nothing prints over the dashboard
//  3. Open the probe transport, locally or over SSH with --host
//  4. Start the poller and hand the terminal to monitor.Run
//
// monitor.Run restores the terminal before returning, so any error that
// comes back is printed by Execute on a normal screen.
package cli
