package yamlload

import "testing"

const sampleCompose = `
services:
  web:
    image: nginx:1.25
    container_name: web-1
    ports:
      - "8080:80"
      - "127.0.0.1:9000:9000/udp"
    depends_on:
      - db
    environment:
      - FOO=bar
  db:
    build: ./db
    pull_policy: always
networks:
  default:
    driver: bridge
volumes:
  data: {}
`

func TestParseComposeServices(t *testing.T) {
	doc, err := ParseCompose(sampleCompose, "docker-compose.yml")
	t.Run("parses without error", func(t *testing.T) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	web, ok := doc.Services["web"]
	t.Run("finds web service", func(t *testing.T) {
		if !ok {
			t.Fatalf("expected service %q", "web")
		}
	})
	if !ok {
		return
	}

	t.Run("reads image and position", func(t *testing.T) {
		if web.Image != "nginx:1.25" {
			t.Errorf("image = %q, want nginx:1.25", web.Image)
		}
		if web.ImagePos.Zero() {
			t.Errorf("expected non-zero image position")
		}
	})

	t.Run("parses short-syntax ports", func(t *testing.T) {
		if len(web.Ports) != 2 {
			t.Fatalf("ports = %d, want 2", len(web.Ports))
		}
		if web.Ports[0].HostPort != "8080" || web.Ports[0].ContainerPort != "80" {
			t.Errorf("unexpected port 0: %+v", web.Ports[0])
		}
		if web.Ports[1].HostIP != "127.0.0.1" || web.Ports[1].Protocol != "udp" {
			t.Errorf("unexpected port 1: %+v", web.Ports[1])
		}
	})

	t.Run("parses depends_on and environment", func(t *testing.T) {
		if len(web.DependsOn) != 1 || web.DependsOn[0] != "db" {
			t.Errorf("depends_on = %v", web.DependsOn)
		}
		if web.Environment["FOO"] != "bar" {
			t.Errorf("environment[FOO] = %q, want bar", web.Environment["FOO"])
		}
	})

	t.Run("db service has build and pull_policy", func(t *testing.T) {
		db := doc.Services["db"]
		if db.Build == nil {
			t.Errorf("expected build node")
		}
		if !db.HasPullPolicy || db.PullPolicy != "always" {
			t.Errorf("pull_policy = %q, hasPullPolicy = %v", db.PullPolicy, db.HasPullPolicy)
		}
	})

	t.Run("top-level sections parsed in order", func(t *testing.T) {
		if len(doc.NetworkOrder) != 1 || doc.NetworkOrder[0] != "default" {
			t.Errorf("networks = %v", doc.NetworkOrder)
		}
		if len(doc.VolumeOrder) != 1 || doc.VolumeOrder[0] != "data" {
			t.Errorf("volumes = %v", doc.VolumeOrder)
		}
	})
}

func TestParseComposePortOutOfRange(t *testing.T) {
	src := `
services:
  web:
    image: nginx
    ports:
      - "70000:80"
`
	_, err := ParseCompose(src, "docker-compose.yml")
	if err == nil {
		t.Fatalf("expected structural parse error for out-of-range port")
	}
}

func TestParseComposePortBoundaryValues(t *testing.T) {
	src := `
services:
  web:
    image: nginx
    ports:
      - "0:65535"
`
	doc, err := ParseCompose(src, "docker-compose.yml")
	if err != nil {
		t.Fatalf("unexpected error for boundary ports: %v", err)
	}
	p := doc.Services["web"].Ports[0]
	if p.HostPort != "0" || p.ContainerPort != "65535" {
		t.Errorf("unexpected boundary port parse: %+v", p)
	}
}

func TestParseComposeEmptyFile(t *testing.T) {
	_, err := ParseCompose("   \n  ", "docker-compose.yml")
	if err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestParseComposeMalformedPortsScalar(t *testing.T) {
	src := `
services:
  web:
    image: nginx
    ports: "not-a-list"
`
	doc, err := ParseCompose(src, "docker-compose.yml")
	t.Run("no structural error", func(t *testing.T) {
		if err != nil {
			t.Fatalf("unexpected structural error: %v", err)
		}
	})
	t.Run("ports left empty for rule-level diagnostic", func(t *testing.T) {
		if len(doc.Services["web"].Ports) != 0 {
			t.Errorf("expected no parsed ports, got %v", doc.Services["web"].Ports)
		}
	})
}
