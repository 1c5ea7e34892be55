package casjobs

// clientVersion is the version of the gocasjobs client, reported in the
// User-Agent of every request.
const clientVersion = "0.3.1"
