// Package redis implements connector.CommandConnector for Redis sources via
// go-redis/v9. Unlike the SQL dialects, there is no tokenizer/classifier
// pass: execute_command takes a whitespace-tokenized command line and
// dispatches to the typed client method for that command.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dbgateway/gateway/internal/connector"
	"github.com/dbgateway/gateway/internal/dsn"
)

// Connector implements connector.CommandConnector for Redis.
type Connector struct {
	client *goredis.Client
}

// New creates a fresh, unconnected Redis connector prototype.
func New() connector.Connector {
	return &Connector{}
}

// clientOptions translates a gateway redis:// or rediss:// DSN into
// go-redis options. ParseURL handles the strict-URL case, including every
// query option go-redis understands (dial_timeout, pool_size, ...); a DSN
// it rejects — typically a password carrying raw URL delimiter characters
// — falls back to the gateway's tolerant parser.
func clientOptions(raw string) (*goredis.Options, error) {
	if opts, err := goredis.ParseURL(raw); err == nil {
		return opts, nil
	}

	parsed, err := dsn.Parse("redis", raw)
	if err != nil {
		return nil, err
	}

	port := parsed.Port
	if port == 0 {
		port = 6379
	}
	opts := &goredis.Options{
		Addr:     fmt.Sprintf("%s:%d", parsed.Host, port),
		Username: parsed.User,
		Password: parsed.Password,
	}
	if parsed.Database != "" {
		db, err := strconv.Atoi(parsed.Database)
		if err != nil {
			return nil, fmt.Errorf("invalid database index %q", parsed.Database)
		}
		opts.DB = db
	}
	if parsed.Scheme == "rediss" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts, nil
}

func (c *Connector) Connect(ctx context.Context, cfg connector.ConnectionConfig) error {
	opts, err := clientOptions(cfg.DSN)
	if err != nil {
		return fmt.Errorf("redis parse dsn: %w", err)
	}
	if cfg.ConnectTimeout > 0 {
		opts.DialTimeout = cfg.ConnectTimeout
	}
	if cfg.RequestTimeout > 0 {
		opts.ReadTimeout = cfg.RequestTimeout
		opts.WriteTimeout = cfg.RequestTimeout
	}
	if cfg.MaxOpenConns > 0 {
		opts.PoolSize = cfg.MaxOpenConns
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("redis ping: %w", err)
	}

	if cfg.InitScript != "" {
		if err := client.Do(ctx, tokenize(cfg.InitScript)...).Err(); err != nil {
			client.Close()
			return fmt.Errorf("redis init script: %w", err)
		}
	}

	c.client = client
	return nil
}

func (c *Connector) Disconnect() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *Connector) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Connector) DriverName() string { return "redis" }

func (c *Connector) Clone() connector.Connector {
	return &Connector{}
}

// ExecuteCommand parses a whitespace-tokenized Redis command (e.g.
// "HSET user:2 name Bob") and dispatches to the typed client method for its
// verb. Result is {value, type}; type is one of string, integer, boolean,
// hash, list, set, zset, nil.
func (c *Connector) ExecuteCommand(ctx context.Context, text string, opts connector.ExecuteOptions) (*connector.CommandResult, error) {
	args := tokenize(text)
	if len(args) == 0 {
		return nil, fmt.Errorf("empty redis command")
	}
	verb := strings.ToUpper(args[0])

	switch verb {
	case "GET":
		return c.get(ctx, args)
	case "SET":
		return c.set(ctx, args)
	case "DEL":
		return c.del(ctx, args)
	case "EXISTS":
		return c.exists(ctx, args)
	case "EXPIRE":
		return c.expire(ctx, args)
	case "TTL":
		return c.ttl(ctx, args)
	case "KEYS":
		return c.keys(ctx, args, opts.MaxRows)
	case "HGET":
		return c.hget(ctx, args)
	case "HGETALL":
		return c.hgetall(ctx, args)
	case "HSET":
		return c.hset(ctx, args)
	case "LRANGE":
		return c.lrange(ctx, args)
	case "LPUSH", "RPUSH":
		return c.push(ctx, verb, args)
	case "SMEMBERS":
		return c.smembers(ctx, args)
	case "SADD":
		return c.sadd(ctx, args)
	case "ZRANGE":
		return c.zrange(ctx, args)
	case "ZADD":
		return c.zadd(ctx, args)
	default:
		return c.generic(ctx, args)
	}
}

func tokenize(text string) []any {
	fields := strings.Fields(text)
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return args
}

func needArgs(verb string, args []any, n int) error {
	if len(args) < n {
		return fmt.Errorf("%s requires %d argument(s)", verb, n-1)
	}
	return nil
}

func (c *Connector) get(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("GET", args, 2); err != nil {
		return nil, err
	}
	key := args[1].(string)
	val, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return &connector.CommandResult{Value: map[string]any{"value": nil, "type": "nil"}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": val, "type": "string"}}, nil
}

func (c *Connector) set(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("SET", args, 3); err != nil {
		return nil, err
	}
	key, value := args[1].(string), args[2].(string)
	if err := c.client.Set(ctx, key, value, 0).Err(); err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": "OK", "type": "string"}}, nil
}

func (c *Connector) del(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("DEL", args, 2); err != nil {
		return nil, err
	}
	count, err := c.client.Del(ctx, toStrings(args[1:])...).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": count, "type": "integer"}}, nil
}

func (c *Connector) exists(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("EXISTS", args, 2); err != nil {
		return nil, err
	}
	count, err := c.client.Exists(ctx, toStrings(args[1:])...).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": count > 0, "type": "boolean"}}, nil
}

func (c *Connector) expire(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("EXPIRE", args, 3); err != nil {
		return nil, err
	}
	seconds, err := strconv.Atoi(args[2].(string))
	if err != nil {
		return nil, fmt.Errorf("EXPIRE: invalid seconds: %w", err)
	}
	ok, err := c.client.Expire(ctx, args[1].(string), time.Duration(seconds)*time.Second).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": ok, "type": "boolean"}}, nil
}

func (c *Connector) ttl(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("TTL", args, 2); err != nil {
		return nil, err
	}
	d, err := c.client.TTL(ctx, args[1].(string)).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": int64(d.Seconds()), "type": "integer"}}, nil
}

// keys honors max_rows by truncating the scanned result, silently.
func (c *Connector) keys(ctx context.Context, args []any, maxRows int) (*connector.CommandResult, error) {
	pattern := "*"
	if len(args) > 1 {
		pattern = args[1].(string)
	}
	limit := maxRows
	if limit <= 0 {
		limit = 1000
	}

	var cursor uint64
	keys := make([]string, 0, limit)
	for len(keys) < limit {
		batch, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) > limit {
		keys = keys[:limit]
	}
	return &connector.CommandResult{Value: map[string]any{"value": keys, "type": "list"}}, nil
}

func (c *Connector) hget(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("HGET", args, 3); err != nil {
		return nil, err
	}
	val, err := c.client.HGet(ctx, args[1].(string), args[2].(string)).Result()
	if err == goredis.Nil {
		return &connector.CommandResult{Value: map[string]any{"value": nil, "type": "nil"}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": val, "type": "string"}}, nil
}

func (c *Connector) hgetall(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("HGETALL", args, 2); err != nil {
		return nil, err
	}
	val, err := c.client.HGetAll(ctx, args[1].(string)).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": val, "type": "hash"}}, nil
}

func (c *Connector) hset(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("HSET", args, 4); err != nil {
		return nil, err
	}
	if (len(args)-2)%2 != 0 {
		return nil, fmt.Errorf("HSET requires field/value pairs")
	}
	count, err := c.client.HSet(ctx, args[1].(string), toStrings(args[2:])).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": count, "type": "integer"}}, nil
}

func (c *Connector) lrange(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("LRANGE", args, 4); err != nil {
		return nil, err
	}
	start, err := strconv.ParseInt(args[2].(string), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("LRANGE: invalid start: %w", err)
	}
	stop, err := strconv.ParseInt(args[3].(string), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("LRANGE: invalid stop: %w", err)
	}
	val, err := c.client.LRange(ctx, args[1].(string), start, stop).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": val, "type": "list"}}, nil
}

func (c *Connector) push(ctx context.Context, verb string, args []any) (*connector.CommandResult, error) {
	if err := needArgs(verb, args, 3); err != nil {
		return nil, err
	}
	var count int64
	var err error
	if verb == "LPUSH" {
		count, err = c.client.LPush(ctx, args[1].(string), toStrings(args[2:])...).Result()
	} else {
		count, err = c.client.RPush(ctx, args[1].(string), toStrings(args[2:])...).Result()
	}
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": count, "type": "integer"}}, nil
}

func (c *Connector) smembers(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("SMEMBERS", args, 2); err != nil {
		return nil, err
	}
	val, err := c.client.SMembers(ctx, args[1].(string)).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": val, "type": "set"}}, nil
}

func (c *Connector) sadd(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("SADD", args, 3); err != nil {
		return nil, err
	}
	count, err := c.client.SAdd(ctx, args[1].(string), toStrings(args[2:])...).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": count, "type": "integer"}}, nil
}

func (c *Connector) zrange(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("ZRANGE", args, 4); err != nil {
		return nil, err
	}
	start, err := strconv.ParseInt(args[2].(string), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ZRANGE: invalid start: %w", err)
	}
	stop, err := strconv.ParseInt(args[3].(string), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("ZRANGE: invalid stop: %w", err)
	}
	val, err := c.client.ZRange(ctx, args[1].(string), start, stop).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": val, "type": "zset"}}, nil
}

func (c *Connector) zadd(ctx context.Context, args []any) (*connector.CommandResult, error) {
	if err := needArgs("ZADD", args, 4); err != nil {
		return nil, err
	}
	if (len(args)-2)%2 != 0 {
		return nil, fmt.Errorf("ZADD requires score/member pairs")
	}
	members := make([]goredis.Z, 0, (len(args)-2)/2)
	for i := 2; i < len(args); i += 2 {
		score, err := strconv.ParseFloat(args[i].(string), 64)
		if err != nil {
			return nil, fmt.Errorf("ZADD: invalid score: %w", err)
		}
		members = append(members, goredis.Z{Score: score, Member: args[i+1].(string)})
	}
	count, err := c.client.ZAdd(ctx, args[1].(string), members...).Result()
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": count, "type": "integer"}}, nil
}

// generic dispatches any other command verbatim through the low-level Do
// path, for commands not given a typed helper above.
func (c *Connector) generic(ctx context.Context, args []any) (*connector.CommandResult, error) {
	res, err := c.client.Do(ctx, args...).Result()
	if err == goredis.Nil {
		return &connector.CommandResult{Value: map[string]any{"value": nil, "type": "nil"}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &connector.CommandResult{Value: map[string]any{"value": res, "type": "string"}}, nil
}

func toStrings(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a.(string)
	}
	return out
}
