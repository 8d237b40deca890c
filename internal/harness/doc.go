// Package harness runs fixture-comparison suites without an external test
// runner.
//
// # Suite Format
//
// Suites are YAML files:
//
//	name: response
//	description: evalresp response curves
//	cases:
//	  - name: simple
//	    steps:
//	      - keyword: prepare
//	        args: [response/simple, simple, RESP.IU.ANMO..BHZ]
//	      - run: [evalresp, ANMO, BHZ, "2010", "1", "0.001", "10", "100"]
//	        stdout: evalresp.log
//	      - keyword: count and compare target files two float cols
//	      - keyword: compare text
//	        args: [response/simple, AMP.IU.ANMO..BHZ]
//	        fails: ContentMismatch
//
// A step either calls a keyword with string arguments or runs a command in
// the case's run directory. A step with fails passes only when it fails with
// that failure code.
//
// # Execution
//
// Cases run in order, each with a fresh keyword session. The first step that
// does not have its expected outcome stops the case; the suite carries on
// with the next case.
//
// # Usage
//
//	suite, err := harness.LoadSuite("suites/response.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(ctx, suite, harness.RunOptions{Library: lib})
//	fmt.Print(harness.Summary(result))
package harness
