package dockerfile

// Dockerfile instruction keywords.
const (
	KeywordAdd         = "ADD"
	KeywordArg         = "ARG"
	KeywordCmd         = "CMD"
	KeywordCopy        = "COPY"
	KeywordEntrypoint  = "ENTRYPOINT"
	KeywordEnv         = "ENV"
	KeywordExpose      = "EXPOSE"
	KeywordFrom        = "FROM"
	KeywordHealthcheck = "HEALTHCHECK"
	KeywordLabel       = "LABEL"
	KeywordMaintainer  = "MAINTAINER"
	KeywordOnbuild     = "ONBUILD"
	KeywordRun         = "RUN"
	KeywordShell       = "SHELL"
	KeywordStopsignal  = "STOPSIGNAL"
	KeywordUser        = "USER"
	KeywordVolume      = "VOLUME"
	KeywordWorkdir     = "WORKDIR"
)

// CommentMarker starts a line the builder ignores.
const CommentMarker = "#"

// MaintainerLabel is the label key that replaces the deprecated MAINTAINER instruction.
const MaintainerLabel = "maintainer"
