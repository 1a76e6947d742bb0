package testutil

// FixedRunID is the run id used by deterministic test passes.
//
// Reports carry their run id in JSON output; fixing it keeps golden files
// byte-identical across runs.
const FixedRunID = "test-run-00000000-0000-0000-0000-000000000001"
