package supervisor

import (
	"fmt"
	"os/user"
	"strconv"

	"golang.org/x/sys/unix"

	liberr "github.com/nabbar/networkd/errors"
)

// chownSocket sets the control socket's group ownership to groupName,
// leaving its user ownership (root, at bind time) untouched, matching the
// "owned by root:network" requirement on the listening socket.
func chownSocket(path, groupName string) error {
	g, err := user.LookupGroup(groupName)
	if err != nil {
		return liberr.Wrap(liberr.PrivilegeError, fmt.Sprintf("looking up group %q", groupName), err)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return liberr.Wrap(liberr.PrivilegeError, fmt.Sprintf("parsing gid %q", g.Gid), err)
	}
	return unix.Chown(path, -1, gid)
}

// dropPrivileges resolves userName/groupName and permanently switches the
// calling process to them, clearing supplementary groups first. It must
// only be called after the listening socket is bound and chmodded and
// after both helpers have been spawned: once dropped, the process can
// never regain root to do either again.
func dropPrivileges(userName, groupName string) error {
	u, err := user.Lookup(userName)
	if err != nil {
		return liberr.Wrap(liberr.PrivilegeError, fmt.Sprintf("looking up user %q", userName), err)
	}

	g, err := user.LookupGroup(groupName)
	if err != nil {
		return liberr.Wrap(liberr.PrivilegeError, fmt.Sprintf("looking up group %q", groupName), err)
	}

	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return liberr.Wrap(liberr.PrivilegeError, fmt.Sprintf("parsing uid %q", u.Uid), err)
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return liberr.Wrap(liberr.PrivilegeError, fmt.Sprintf("parsing gid %q", g.Gid), err)
	}

	if err := unix.Setgroups(nil); err != nil {
		return liberr.Wrap(liberr.PrivilegeError, "clearing supplementary groups", err)
	}
	if err := unix.Setgid(gid); err != nil {
		return liberr.Wrap(liberr.PrivilegeError, fmt.Sprintf("setgid(%d)", gid), err)
	}
	if err := unix.Setuid(uid); err != nil {
		return liberr.Wrap(liberr.PrivilegeError, fmt.Sprintf("setuid(%d)", uid), err)
	}

	return nil
}
