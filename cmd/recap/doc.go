// Command recap is the CLI for the recap pipeline: it runs the daemon,
// manages the video queue, inspects channels, and summarizes local
// transcript files for prompt tuning.
package main
