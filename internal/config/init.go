package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# charmrelease configuration
charm:
  name: weebl
  store_location: cs:~oil-charms/weebl

workspace:
  build_dir: builds
  deps_dir: deps

# Argv templates. Available fields: .WorkingDir .BuildPath .StoreLocation .Artifact .Channel
commands:
  status: [bzr, status]
  whoami: [charm, whoami]
  build: [charm, build, -o, "{{.WorkingDir}}"]
  proof: [charm, proof, "{{.BuildPath}}"]
  push: [charm, push, "{{.BuildPath}}", "{{.StoreLocation}}"]
  release: [charm, release, "{{.Artifact}}", --channel, "{{.Channel}}"]
  grant: [charm, grant, "{{.Artifact}}", --channel, "{{.Channel}}", everyone]
  provision: [sudo, apt-get, install, -y]
  admin: [python3, manage.py]
  db: [pg_dump]

proof:
  enabled: true

# The build output of these channels is committed to a mirror repository.
# mirrors:
#   - channel: stable
#     repository: ssh://git@git.example.com/oil/weebl-charm.git
#     branch: master
#     auth:
#       type: ssh
#       key_path: ${HOME}/.ssh/id_ed25519

mirror:
  author_name: charmrelease
  author_email: charmrelease@localhost
  push: true
  # hook_command: [git, push, origin, HEAD]

logging:
  level: info
  format: text

# metrics:
#   textfile: /var/lib/node_exporter/textfile/charmrelease.prom
# journal:
#   path: ${HOME}/.local/share/charmrelease/journal.db
# notify:
#   url: nats://localhost:4222
#   subject: charmrelease.weebl

provision:
  packages: [charm-tools, bzr, git]

# database:
#   host: localhost
#   port: 5432
#   user: weebl
#   password: ${WEEBL_DB_PASSWORD}
`

// Init writes an example configuration file.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(exampleConfig), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
