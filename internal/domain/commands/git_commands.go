package commands

import (
	"github.com/rios0rios0/depbot/internal/domain/entities"
)

const (
	gitBinary  = "git"
	forkRemote = "fork"
	originName = "origin"
)

func gitClone(url string) entities.Command {
	return entities.NewCommand(gitBinary, "clone", "--depth", "1", url, ".")
}

func gitCurrentBranch() entities.Command {
	return entities.NewCommand(gitBinary, "rev-parse", "--abbrev-ref", "HEAD")
}

func gitUnshallow() entities.Command {
	return entities.NewCommand(gitBinary, "pull", "--unshallow")
}

func gitAddRemote(name, url string) entities.Command {
	return entities.NewCommand(gitBinary, "remote", "add", name, url)
}

func gitPush(remote, branch string, force bool) entities.Command {
	if force {
		return entities.NewCommand(gitBinary, "push", "--force", remote, branch)
	}
	return entities.NewCommand(gitBinary, "push", remote, branch)
}

func gitCheckoutNewBranch(branch string) entities.Command {
	return entities.NewCommand(gitBinary, "checkout", "-b", branch)
}

func gitCheckout(branch string) entities.Command {
	return entities.NewCommand(gitBinary, "checkout", branch)
}

func gitDiscardChanges() entities.Command {
	return entities.NewCommand(gitBinary, "checkout", ".")
}

// gitDiscardExcept restores every tracked file except the given ones.
func gitDiscardExcept(keep ...string) entities.Command {
	args := []string{"checkout", "--", "."}
	for _, file := range keep {
		args = append(args, ":(exclude)"+file)
	}
	return entities.NewCommand(gitBinary, args...)
}

func gitAdd(files ...string) entities.Command {
	return entities.NewCommand(gitBinary, append([]string{"add", "--"}, files...)...)
}

func gitCommit(message string, identity entities.IdentityConfig) entities.Command {
	return entities.NewCommand(gitBinary, "commit", "-m", message).WithEnv(
		"GIT_AUTHOR_NAME="+identity.Name,
		"GIT_AUTHOR_EMAIL="+identity.Email,
		"GIT_COMMITTER_NAME="+identity.Name,
		"GIT_COMMITTER_EMAIL="+identity.Email,
	)
}

func rsyncRestore(source, destination string) entities.Command {
	return entities.NewCommand("rsync", "-a", source+"/", destination+"/")
}

func rsyncPersist(source, destination, manifestPrefix string) entities.Command {
	return entities.NewCommand("rsync", "-az",
		"--exclude", manifestPrefix+".*",
		"--exclude", ".git",
		source+"/", destination+"/",
	)
}
