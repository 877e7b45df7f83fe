package commands

// GitDiscardExcept exports gitDiscardExcept for testing.
var GitDiscardExcept = gitDiscardExcept //nolint:gochecknoglobals // test export

// GitCommit exports gitCommit for testing.
var GitCommit = gitCommit //nolint:gochecknoglobals // test export

// RsyncPersist exports rsyncPersist for testing.
var RsyncPersist = rsyncPersist //nolint:gochecknoglobals // test export
