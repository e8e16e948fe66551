// Package presence 维护在线身份到连接句柄及当前房间的映射
// 每个身份最多一条记录；所有操作都是线性一致的，且在任何内部同步期间都不做 I/O
package presence

import (
	"sync"
)

// Conn 连接句柄，由连接生命周期管理器提供
// Send 必须是非阻塞的入队操作
type Conn interface {
	Send(event string, payload any) error
	Close() error
}

// Entry 目录中的一条记录，Room 为空表示不在任何房间
type Entry struct {
	Key  string
	Conn Conn
	Room string
}

// Directory 在线目录
// 值为不可变的 *Entry，修改时整体替换，配合 CompareAndSwap 实现无锁更新
type Directory struct {
	entries sync.Map // key -> *Entry
}

// NewDirectory 创建空目录
func NewDirectory() *Directory {
	return &Directory{}
}

// Register 插入或替换 key 的记录，返回被替换的旧记录
func (d *Directory) Register(key string, conn Conn) (Entry, bool) {
	prev, loaded := d.entries.Swap(key, &Entry{Key: key, Conn: conn})
	if !loaded {
		return Entry{}, false
	}
	return *prev.(*Entry), true
}

// Deregister 仅当当前记录的句柄就是 conn 时才删除
// 重连竞争中旧连接的断开不会移除新连接
func (d *Directory) Deregister(key string, conn Conn) bool {
	for {
		v, ok := d.entries.Load(key)
		if !ok {
			return false
		}
		if v.(*Entry).Conn != conn {
			return false
		}
		if d.entries.CompareAndDelete(key, v) {
			return true
		}
	}
}

// SetRoom 修改 key 当前所在房间，room 为空表示离开房间；key 不存在时不做任何事
func (d *Directory) SetRoom(key, room string) bool {
	return d.setRoom(key, nil, room)
}

// SetConnRoom 同 SetRoom，但只在记录仍属于 conn 时生效
func (d *Directory) SetConnRoom(key string, conn Conn, room string) bool {
	return d.setRoom(key, conn, room)
}

func (d *Directory) setRoom(key string, owner Conn, room string) bool {
	for {
		v, ok := d.entries.Load(key)
		if !ok {
			return false
		}
		cur := v.(*Entry)
		if owner != nil && cur.Conn != owner {
			return false
		}
		next := &Entry{Key: cur.Key, Conn: cur.Conn, Room: room}
		if d.entries.CompareAndSwap(key, v, next) {
			return true
		}
	}
}

// Lookup 返回 key 的记录快照
func (d *Directory) Lookup(key string) (Entry, bool) {
	v, ok := d.entries.Load(key)
	if !ok {
		return Entry{}, false
	}
	return *v.(*Entry), true
}

// InRoom 返回当前在 room 中的记录快照，excludeKey 对应的记录不计入
func (d *Directory) InRoom(room, excludeKey string) []Entry {
	var out []Entry
	if room == "" {
		return out
	}
	d.entries.Range(func(_, v any) bool {
		e := v.(*Entry)
		if e.Room == room && e.Key != excludeKey {
			out = append(out, *e)
		}
		return true
	})
	return out
}

// BroadcastToRoom 向 room 中除 excludeKey 外的每个连接发送事件，返回成功入队的数量
// 先取快照再发送
func (d *Directory) BroadcastToRoom(room, event string, payload any, excludeKey string) int {
	sent := 0
	for _, e := range d.InRoom(room, excludeKey) {
		if err := e.Conn.Send(event, payload); err == nil {
			sent++
		}
	}
	return sent
}

// Count 当前在线身份数
func (d *Directory) Count() int {
	n := 0
	d.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// CloseAll 关闭当前所有连接，用于进程退出；记录由各自的连接在退出时注销
func (d *Directory) CloseAll() int {
	var conns []Conn
	d.entries.Range(func(_, v any) bool {
		conns = append(conns, v.(*Entry).Conn)
		return true
	})
	for _, c := range conns {
		_ = c.Close()
	}
	return len(conns)
}
