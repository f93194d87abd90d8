package redis

import "github.com/redis/go-redis/v9"

// KEYS: username index, account. ARGV: account id, account json.
// Returns 0 when the username is taken.
var createLocalScript = redis.NewScript(`
if redis.call('SETNX', KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2])
return 1
`)

// KEYS: federated index, account. ARGV: account id, account json.
// Returns the id of the account now bound to the subject.
var findOrCreateFederatedScript = redis.NewScript(`
local existing = redis.call('GET', KEYS[1])
if existing then
	return existing
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('SET', KEYS[2], ARGV[2])
return ARGV[1]
`)

// KEYS: account, entries. ARGV: entry.
// Returns -1 when the account does not exist.
var appendEntryScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('RPUSH', KEYS[2], ARGV[1])
`)

// KEYS: account, entries. ARGV: entry.
// Returns the number of removed occurrences, or -1 when the account does not exist.
var removeEntryScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
return redis.call('LREM', KEYS[2], 0, ARGV[1])
`)
