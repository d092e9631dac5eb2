package services

import "time"

// timeNow is swapped out in tests that assert on join-time ordering.
var timeNow = time.Now
